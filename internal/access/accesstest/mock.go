// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package accesstest provides test helpers for access control.
package accesstest

import (
	"context"
	"strings"

	"github.com/mythosmud/mythosmud/internal/access"
	"github.com/mythosmud/mythosmud/internal/access/policy/types"
)

// AllowAll is an AccessControl that allows everything. It also satisfies
// policy.AccessPolicyEngine so dispatcher tests can pass the same stub to
// either collaborator.
type AllowAll struct{}

// Check always returns true.
func (AllowAll) Check(_ context.Context, _, _, _ string) bool {
	return true
}

// Evaluate always allows.
func (AllowAll) Evaluate(_ context.Context, _ types.AccessRequest) (types.Decision, error) {
	return types.NewDecision(types.EffectAllow, "AllowAll", ""), nil
}

// DenyAll is an AccessControl that denies everything. It also satisfies
// policy.AccessPolicyEngine so dispatcher tests can pass the same stub to
// either collaborator.
type DenyAll struct{}

// Check always returns false.
func (DenyAll) Check(_ context.Context, _, _, _ string) bool {
	return false
}

// Evaluate always denies.
func (DenyAll) Evaluate(_ context.Context, _ types.AccessRequest) (types.Decision, error) {
	return types.NewDecision(types.EffectDeny, "DenyAll", ""), nil
}

// MapResolver is a simple LocationResolver backed by maps.
type MapResolver struct {
	Locations  map[string]string    // charID → locationID
	Characters map[string][]string // locationID → charIDs
}

// CurrentLocation returns the location for a character.
func (r *MapResolver) CurrentLocation(_ context.Context, charID string) (string, error) {
	return r.Locations[charID], nil
}

// CharactersAt returns characters at a location.
func (r *MapResolver) CharactersAt(_ context.Context, locationID string) ([]string, error) {
	return r.Characters[locationID], nil
}

// MockAccessControl is an AccessControl for testing with selective grants.
type MockAccessControl struct {
	grants map[string]map[string]bool // subject -> "action:resource" -> allowed
}

// NewMockAccessControl creates a new MockAccessControl.
func NewMockAccessControl() *MockAccessControl {
	return &MockAccessControl{
		grants: make(map[string]map[string]bool),
	}
}

// Grant allows a subject to perform an action on a resource. subject accepts
// either the legacy "char:" or canonical "character:" prefix, matching
// access.go's Phase 7.6 migration note.
func (m *MockAccessControl) Grant(subject, action, resource string) {
	subject = canonicalSubject(subject)
	if m.grants[subject] == nil {
		m.grants[subject] = make(map[string]bool)
	}
	m.grants[subject][action+":"+resource] = true
}

// Check implements AccessControl.
func (m *MockAccessControl) Check(_ context.Context, subject, action, resource string) bool {
	if caps, ok := m.grants[canonicalSubject(subject)]; ok {
		return caps[action+":"+resource]
	}
	return false
}

// canonicalSubject normalizes the legacy "char:" subject prefix to
// access.SubjectCharacter so grants made with either prefix are found
// regardless of which one the caller being tested uses.
func canonicalSubject(subject string) string {
	if rest, ok := strings.CutPrefix(subject, "char:"); ok {
		return access.SubjectCharacter + rest
	}
	return subject
}

// Evaluate implements policy.AccessPolicyEngine against the same grants map
// Check and Grant use, so a single MockAccessControl can stand in for
// either collaborator in dispatcher tests.
func (m *MockAccessControl) Evaluate(ctx context.Context, req types.AccessRequest) (types.Decision, error) {
	if m.Check(ctx, req.Subject, req.Action, req.Resource) {
		return types.NewDecision(types.EffectAllow, "MockAccessControl grant", ""), nil
	}
	return types.NewDecision(types.EffectDeny, "MockAccessControl: no grant", ""), nil
}

// ErrorEngine is a policy.AccessPolicyEngine that always returns err,
// for exercising a middleware's fail-open/fail-closed behavior on a
// broken capability engine.
type ErrorEngine struct {
	err error
}

// NewErrorEngine creates an engine whose Evaluate always fails with err.
func NewErrorEngine(err error) *ErrorEngine {
	return &ErrorEngine{err: err}
}

// Evaluate always returns the configured error.
func (e *ErrorEngine) Evaluate(_ context.Context, _ types.AccessRequest) (types.Decision, error) {
	return types.Decision{}, e.err
}

// GrantEngine is a policy.AccessPolicyEngine backed by explicit
// subject+action+resource grants, for tests that need one specific
// capability allowed and everything else denied.
type GrantEngine struct {
	grants map[string]bool // "subject:action:resource" -> allowed
}

// NewGrantEngine creates an engine with no grants; every request is denied
// until Grant is called.
func NewGrantEngine() *GrantEngine {
	return &GrantEngine{grants: make(map[string]bool)}
}

// Grant allows subject to perform action on resource.
func (e *GrantEngine) Grant(subject, action, resource string) {
	e.grants[subject+":"+action+":"+resource] = true
}

// Evaluate implements policy.AccessPolicyEngine against the grants map.
func (e *GrantEngine) Evaluate(_ context.Context, req types.AccessRequest) (types.Decision, error) {
	if e.grants[req.Subject+":"+req.Action+":"+req.Resource] {
		return types.NewDecision(types.EffectAllow, "GrantEngine grant", ""), nil
	}
	return types.NewDecision(types.EffectDefaultDeny, "GrantEngine: no grant", ""), nil
}

// Verify interfaces are satisfied.
var (
	_ access.AccessControl    = AllowAll{}
	_ access.AccessControl    = DenyAll{}
	_ access.AccessControl    = (*MockAccessControl)(nil)
	_ access.LocationResolver = (*MapResolver)(nil)
	_ types.AccessPolicyEngine = (*ErrorEngine)(nil)
	_ types.AccessPolicyEngine = (*GrantEngine)(nil)
)
