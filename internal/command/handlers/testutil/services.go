// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package testutil

import (
	"github.com/mythosmud/mythosmud/internal/access"
	"github.com/mythosmud/mythosmud/internal/access/accesstest"
	"github.com/mythosmud/mythosmud/internal/command"
	"github.com/mythosmud/mythosmud/internal/event"
	"github.com/mythosmud/mythosmud/internal/session"
)

// ServicesBuilder builds command.Services with reasonable defaults for tests.
type ServicesBuilder struct {
	config command.ServicesConfig
}

// NewServicesBuilder creates a builder with default services.
func NewServicesBuilder() *ServicesBuilder {
	return &ServicesBuilder{
		config: command.ServicesConfig{
			Session:     session.NewRegistry(nil),
			Access:      accesstest.NewMockAccessControl(),
			Events:      event.NewMemoryStore(),
			Broadcaster: event.NewBus(),
		},
	}
}

func (b *ServicesBuilder) WithWorld(worldService command.WorldService) *ServicesBuilder {
	b.config.World = worldService
	return b
}

func (b *ServicesBuilder) WithSession(session session.Service) *ServicesBuilder {
	b.config.Session = session
	return b
}

func (b *ServicesBuilder) WithAccess(accessControl access.AccessControl) *ServicesBuilder {
	b.config.Access = accessControl
	return b
}

func (b *ServicesBuilder) WithEvents(events event.Store) *ServicesBuilder {
	b.config.Events = events
	return b
}

func (b *ServicesBuilder) WithBroadcaster(broadcaster command.EventBroadcaster) *ServicesBuilder {
	b.config.Broadcaster = broadcaster
	return b
}

func (b *ServicesBuilder) WithAliasCache(cache *command.AliasCache) *ServicesBuilder {
	b.config.AliasCache = cache
	return b
}

func (b *ServicesBuilder) WithAliasRepo(repo command.AliasWriter) *ServicesBuilder {
	b.config.AliasRepo = repo
	return b
}

func (b *ServicesBuilder) WithRegistry(registry *command.Registry) *ServicesBuilder {
	b.config.Registry = registry
	return b
}

func (b *ServicesBuilder) WithModeration(moderation command.ModerationService) *ServicesBuilder {
	b.config.Moderation = moderation
	return b
}

func (b *ServicesBuilder) WithCountdowns(countdowns command.RestCountdownService) *ServicesBuilder {
	b.config.Countdowns = countdowns
	return b
}

// Build returns a Services instance for tests.
func (b *ServicesBuilder) Build() *command.Services {
	return command.NewTestServices(b.config)
}
