// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package policy implements C5's capability gate: the question the
// dispatcher asks before a command with required capabilities runs ("can
// subject execute capability X?"). Authoring a policy DSL, attribute-based
// conditions, and a durable policy store are explicitly out of scope
// (spec.md §1 Non-goals) — grants are a static, in-memory subject→capability
// set, configured once at startup by whatever collaborator (admin tooling,
// config file, default role seed) assigns capabilities.
package policy

import (
	"context"
	"sync"
	"time"

	"github.com/mythosmud/mythosmud/internal/access/policy/types"
)

// AccessPolicyEngine is the capability gate the dispatcher depends on.
type AccessPolicyEngine = types.AccessPolicyEngine

// SubjectSystem is the subject value that always bypasses capability checks,
// used by system-originated commands (tick scheduler, orchestrator) that
// have no character behind them.
const SubjectSystem = "system"

// CapabilityStore holds the subject→capability grants an Engine consults. A
// grant gates "execute" actions only; resource here is always a capability
// name (e.g. "admin.mute"), not a room or character reference.
type CapabilityStore struct {
	mu     sync.RWMutex
	grants map[string]map[string]bool // subject -> capability -> allowed
}

// NewCapabilityStore creates an empty capability store.
func NewCapabilityStore() *CapabilityStore {
	return &CapabilityStore{grants: make(map[string]map[string]bool)}
}

// Grant allows subject to exercise capability.
func (s *CapabilityStore) Grant(subject, capability string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grants[subject] == nil {
		s.grants[subject] = make(map[string]bool)
	}
	s.grants[subject][capability] = true
}

// Revoke removes a previously granted capability.
func (s *CapabilityStore) Revoke(subject, capability string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants[subject], capability)
}

// Has reports whether subject currently holds capability.
func (s *CapabilityStore) Has(subject, capability string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grants[subject][capability]
}

// Engine implements AccessPolicyEngine against a CapabilityStore.
type Engine struct {
	store *CapabilityStore
}

// Compile-time check that Engine implements AccessPolicyEngine.
var _ AccessPolicyEngine = (*Engine)(nil)

// NewEngine creates a capability engine backed by store. A nil store means
// every non-system request is denied, the fail-closed default.
func NewEngine(store *CapabilityStore) *Engine {
	return &Engine{store: store}
}

// Evaluate implements AccessPolicyEngine. "system" always bypasses; every
// other subject is checked against the capability store keyed by
// req.Resource (the capability name the command entry declared).
func (e *Engine) Evaluate(_ context.Context, req types.AccessRequest) (types.Decision, error) {
	start := time.Now()

	if req.Subject == SubjectSystem {
		decision := types.NewDecision(types.EffectSystemBypass, "system bypass", "")
		RecordEvaluationMetrics(time.Since(start), decision.Effect)
		return decision, nil
	}

	if e.store == nil || !e.store.Has(req.Subject, req.Resource) {
		decision := types.NewDecision(types.EffectDefaultDeny, "no capability grant", "")
		RecordEvaluationMetrics(time.Since(start), decision.Effect)
		return decision, nil
	}

	decision := types.NewDecision(types.EffectAllow, "capability granted", "")
	RecordEvaluationMetrics(time.Since(start), decision.Effect)
	return decision, nil
}
