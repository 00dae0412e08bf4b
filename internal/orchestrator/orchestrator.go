// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package orchestrator is the C9 lifecycle orchestrator: it composes the
// config, event bus/store, session registry, command dispatcher, tick
// scheduler, and WebSocket transport (C3-C8) into one running process,
// starting them in dependency order and tearing them down in reverse, once
// and idempotently, the same shape the teacher's cmd/holomush/core.go gives
// its own gRPC/control/observability server trio.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mythosmud/mythosmud/internal/access"
	"github.com/mythosmud/mythosmud/internal/access/policy"
	"github.com/mythosmud/mythosmud/internal/audit"
	"github.com/mythosmud/mythosmud/internal/auth"
	"github.com/mythosmud/mythosmud/internal/command"
	"github.com/mythosmud/mythosmud/internal/command/handlers"
	"github.com/mythosmud/mythosmud/internal/config"
	"github.com/mythosmud/mythosmud/internal/core"
	"github.com/mythosmud/mythosmud/internal/event"
	"github.com/mythosmud/mythosmud/internal/messaging"
	"github.com/mythosmud/mythosmud/internal/session"
	"github.com/mythosmud/mythosmud/internal/tick"
	"github.com/mythosmud/mythosmud/internal/transport/ws"
	"github.com/mythosmud/mythosmud/internal/world"
)

// serverLifecycleSubject is the messaging subject the orchestrator itself
// publishes startup/shutdown notifications on — the one domain event this
// module has to offer the messaging collaborator, since combat/death events
// are out of scope (see DESIGN.md).
const serverLifecycleSubject = "mythosmud.server.lifecycle"

// adminCapabilities lists every capability a registered admin command
// requires, per internal/command/handlers/register.go. Granted in bulk to
// whichever subject Deps.AdminCharacterID names, so a freshly started
// server has at least one account that can run boot/shutdown/wall/etc.
var adminCapabilities = []string{
	"admin.alias",
	"admin.mute",
	"admin.grant",
	"admin.teleport",
	"admin.boot",
	"admin.shutdown",
	"admin.wall",
}

// Deps bundles the collaborators a Server composes. Every field is
// optional: a nil value gets the same in-memory/demo default
// cmd/mythosmud's bare "serve" invocation runs with.
type Deps struct {
	// World backs room/character queries. Defaults to world.NewMemoryWorld,
	// a small seeded area — real room/player persistence is out of scope
	// for this module (see DESIGN.md).
	World command.WorldService
	// Access backs authorization checks. Defaults to a
	// access.NewStaticAccessControl wired to World as its LocationResolver
	// when World is also left at its default.
	Access access.AccessControl
	// Verifier authenticates inbound connection tokens. Defaults to nil,
	// which refuses every connection attempt until one is supplied —
	// unlike World/Access, there is no safe demo default for auth.
	Verifier auth.Verifier
	// AliasCache enables runtime alias resolution/management. Defaults to
	// a fresh, empty command.NewAliasCache().
	AliasCache *command.AliasCache
	// AliasRepo persists alias writes. Left nil by default: no production
	// AliasWriter exists in this module (see DESIGN.md); alias/sysalias
	// commands work in-memory for the process lifetime only.
	AliasRepo command.AliasWriter
	// Moderation backs mute/unmute/add_admin. Left nil by default for the
	// same reason as AliasRepo; those commands fail with
	// ErrNoModerationService until a real implementation is wired.
	Moderation command.ModerationService
	// AuditSink records the spec §4.5 audit trail for security-sensitive
	// commands. Defaults to an in-memory sink; pass audit.NewSQLiteSink or
	// audit.NewPostgresSink for a durable trail.
	AuditSink audit.Sink
	// Messaging is the optional pub/sub collaborator spec §6 describes.
	// Defaults to an in-memory bus; pass messaging.NewNoopBus if no broker
	// is configured, or a real implementation once one exists.
	Messaging messaging.Bus
	// AdminCharacterID, if non-zero, is granted every admin.* capability
	// and the "admin" access role at startup.
	AdminCharacterID string
	// PresenceMirror, if set, durably mirrors online/offline transitions
	// alongside the session registry's own in-memory map (see
	// internal/session/redispresence.Mirror). Defaults to nil: the registry
	// works standalone with no durable copy of "who's online."
	PresenceMirror session.PresenceMirror
}

// Server owns one running instance of the game server: the event bus and
// store, session registry, command dispatcher, tick scheduler, and
// WebSocket transport, started in dependency order and stopped in reverse.
// The zero value is not usable; construct with New.
type Server struct {
	cfg  *config.Config
	addr string

	bus       *event.Bus
	store     event.Store
	sessions  *session.Registry
	scheduler *tick.Scheduler
	transport *ws.Server
	auditSink audit.Sink
	messaging messaging.Bus

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

// New wires every collaborator C3-C8 names, defaulting any Deps field left
// nil, and returns a Server ready for Run. It does not start anything yet.
func New(cfg *config.Config, addr string, deps Deps) (*Server, error) {
	bus := event.NewBus()
	store := event.NewMemoryStore()
	sessionOpts := []session.RegistryOption{}
	if deps.PresenceMirror != nil {
		sessionOpts = append(sessionOpts, session.WithPresenceMirror(deps.PresenceMirror))
	}
	sessions := session.NewRegistry(bus, sessionOpts...)

	worldSvc := deps.World
	accessControl := deps.Access
	if worldSvc == nil && accessControl == nil {
		// Both defaulted: wire the memory world as its own access
		// control's LocationResolver so $here tokens resolve.
		mw := world.NewMemoryWorld(nil)
		staticAccess := access.NewStaticAccessControl(mw)
		mw.SetAccessControl(staticAccess)
		worldSvc = mw
		accessControl = staticAccess
	} else {
		if worldSvc == nil {
			worldSvc = world.NewMemoryWorld(accessControl)
		}
		if accessControl == nil {
			accessControl = access.NewStaticAccessControl(nil)
		}
	}

	aliasCache := deps.AliasCache
	if aliasCache == nil {
		aliasCache = command.NewAliasCache()
	}

	auditSink := deps.AuditSink
	if auditSink == nil {
		auditSink = audit.NewMemorySink()
	}

	messagingBus := deps.Messaging
	if messagingBus == nil {
		messagingBus = messaging.NewMemoryBus()
	}

	if deps.AdminCharacterID != "" {
		if err := bootstrapAdmin(accessControl, deps.AdminCharacterID); err != nil {
			return nil, fmt.Errorf("failed to bootstrap admin character: %w", err)
		}
	}

	registry := command.NewRegistry()
	handlers.RegisterAll(registry)

	services, err := command.NewServices(command.ServicesConfig{
		World:       worldSvc,
		Session:     sessions,
		Access:      accessControl,
		Events:      store,
		Broadcaster: bus,
		AliasCache:  aliasCache,
		AliasRepo:   deps.AliasRepo,
		Registry:    registry,
		Moderation:  deps.Moderation,
		Countdowns:  sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to construct services: %w", err)
	}

	capStore := policy.NewCapabilityStore()
	if deps.AdminCharacterID != "" {
		grantAdminCapabilities(capStore, access.CharacterSubject(deps.AdminCharacterID))
	}
	policyEngine := policy.NewEngine(capStore)

	dispatcher, err := command.NewDispatcher(registry, policyEngine,
		command.WithMaxCommandLength(cfg.Game.MaxCommandLength),
		command.WithAliasCache(aliasCache),
		command.WithAuditSink(auditSink),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to construct dispatcher: %w", err)
	}

	scheduler := tick.NewScheduler(
		tick.Config{Interval: cfg.Game.TickRate},
		bus,
		tick.WithOnlinePlayers(sessions),
	)

	engine := core.NewEngine(store, sessions)

	s := &Server{
		cfg:        cfg,
		addr:       addr,
		bus:        bus,
		store:      store,
		sessions:   sessions,
		scheduler:  scheduler,
		auditSink:  auditSink,
		messaging:  messagingBus,
		shutdownCh: make(chan struct{}),
	}

	s.transport = ws.NewServer(ws.ServerConfig{
		Addr:                addr,
		Verifier:            deps.Verifier,
		Engine:              engine,
		Sessions:            sessions,
		Bus:                 bus,
		World:               worldSvc,
		Services:            services,
		Dispatcher:          dispatcher,
		OnShutdownRequested: s.RequestShutdown,
	})

	return s, nil
}

// bootstrapAdmin assigns charSubject the "admin" access role, if the
// configured AccessControl supports role assignment at all.
func bootstrapAdmin(accessControl access.AccessControl, charID string) error {
	assigner, ok := accessControl.(access.RoleAssigner)
	if !ok {
		slog.Warn("admin character configured but access control does not support role assignment",
			"char_id", charID)
		return nil
	}
	return assigner.AssignRole(access.CharacterSubject(charID), "admin")
}

// grantAdminCapabilities grants subject every capability an admin command
// requires.
func grantAdminCapabilities(store *policy.CapabilityStore, subject string) {
	for _, capability := range adminCapabilities {
		store.Grant(subject, capability)
	}
}

// Run starts every collaborator in dependency order (tick scheduler, then
// transport) and blocks until ctx is cancelled, Stop is called, or a
// "shutdown" command is dispatched on the transport. It then runs the
// reverse-shutdown sequence exactly once before returning.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := s.messaging.Publish(ctx, serverLifecycleSubject, []byte("started")); err != nil {
		slog.Warn("failed to publish server-started notification", "error", err)
	}

	s.scheduler.Start(ctx)
	slog.Info("tick scheduler started", "interval", s.cfg.Game.TickRate)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.transport.Run(ctx)
	}()
	slog.Info("transport started", "addr", s.addr)

	var runErr error
	select {
	case <-ctx.Done():
	case <-s.shutdownCh:
		cancel()
		runErr = <-errCh
	case runErr = <-errCh:
		cancel()
	}

	s.shutdown()
	return runErr
}

// RequestShutdown begins the server's shutdown sequence. Safe to call
// concurrently and more than once; only the first call has any effect.
// This is what the "shutdown" command handler's sentinel error ultimately
// triggers, via the transport's OnShutdownRequested hook.
func (s *Server) RequestShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdownCh) })
}

// shutdown tears down every collaborator in the reverse of Run's startup
// order, per spec §6's shutdown duty list: cancel the tick task and await
// its exit (scheduler.Stop already blocks until the in-flight tick's stages
// drain), cancel all per-player rest countdowns, stop the messaging
// collaborator, and finalize audit records. Safe to call even if startup
// never fully completed.
func (s *Server) shutdown() {
	slog.Info("shutting down")

	s.scheduler.Stop()
	slog.Info("tick scheduler stopped")

	cancelled := s.sessions.CancelAllRestCountdowns()
	if cancelled > 0 {
		slog.Info("cancelled in-flight rest countdowns", "count", cancelled)
	}

	if err := s.messaging.Publish(context.Background(), serverLifecycleSubject, []byte("stopping")); err != nil {
		slog.Warn("failed to publish server-stopping notification", "error", err)
	}
	if err := s.messaging.Close(); err != nil {
		slog.Error("failed to stop messaging collaborator", "error", err)
	}

	if err := s.auditSink.Close(); err != nil {
		slog.Error("failed to finalize audit records", "error", err)
	}

	slog.Info("shutdown complete")
}
