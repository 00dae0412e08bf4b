// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/mythosmud/mythosmud/internal/command"
	"github.com/mythosmud/mythosmud/internal/domain"
)

// FakeModerationService is an in-memory command.ModerationService for
// handler tests.
type FakeModerationService struct {
	mu            sync.Mutex
	muted         map[domain.PlayerId]time.Time
	mutedGlobal   map[domain.PlayerId]time.Time
	admins        map[domain.PlayerId]bool
	err           error
}

// NewFakeModerationService returns an empty FakeModerationService.
func NewFakeModerationService() *FakeModerationService {
	return &FakeModerationService{
		muted:       make(map[domain.PlayerId]time.Time),
		mutedGlobal: make(map[domain.PlayerId]time.Time),
		admins:      make(map[domain.PlayerId]bool),
	}
}

// WithErr makes every operation fail with err.
func (f *FakeModerationService) WithErr(err error) *FakeModerationService {
	f.err = err
	return f
}

// IsMuted reports whether target is currently room-muted.
func (f *FakeModerationService) IsMuted(target domain.PlayerId) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.muted[target]
	return ok
}

// IsAdmin reports whether target has been granted admin.
func (f *FakeModerationService) IsAdmin(target domain.PlayerId) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.admins[target]
}

// Mute implements command.ModerationService.
func (f *FakeModerationService) Mute(_ context.Context, _ string, target domain.PlayerId, until time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.muted[target] = until
	f.mu.Unlock()
	return nil
}

// Unmute implements command.ModerationService.
func (f *FakeModerationService) Unmute(_ context.Context, _ string, target domain.PlayerId) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	delete(f.muted, target)
	f.mu.Unlock()
	return nil
}

// MuteGlobal implements command.ModerationService.
func (f *FakeModerationService) MuteGlobal(_ context.Context, _ string, target domain.PlayerId, until time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.mutedGlobal[target] = until
	f.mu.Unlock()
	return nil
}

// UnmuteGlobal implements command.ModerationService.
func (f *FakeModerationService) UnmuteGlobal(_ context.Context, _ string, target domain.PlayerId) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	delete(f.mutedGlobal, target)
	f.mu.Unlock()
	return nil
}

// GrantAdmin implements command.ModerationService.
func (f *FakeModerationService) GrantAdmin(_ context.Context, _ string, target domain.PlayerId) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.admins[target] = true
	f.mu.Unlock()
	return nil
}

var _ command.ModerationService = (*FakeModerationService)(nil)
