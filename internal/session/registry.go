// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package session tracks which characters are online, which connections
// back each of their sessions, and how far behind each stream they've read
// — the connection manager the rest of the core calls C6.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"

	"github.com/mythosmud/mythosmud/internal/domain"
	"github.com/mythosmud/mythosmud/internal/event"
)

// Session represents a character's ongoing presence in the game.
type Session struct {
	CharacterID  ulid.ULID
	Connections  []ulid.ULID          // Active connection IDs
	EventCursors map[string]ulid.ULID // Last seen event per stream
	LastActivity time.Time            // Last time the session had activity
	Intentional  bool                 // set by MarkIntentional before a deliberate disconnect
}

// Service is the narrow view of Registry command handlers depend on, so
// they can be tested against a fake without pulling in the whole registry.
type Service interface {
	ListActiveSessions() []*Session
	GetSession(charID ulid.ULID) *Session
	EndSession(charID ulid.ULID) error
}

// PresenceMirror durably records online/offline transitions alongside the
// Registry's own in-memory bookkeeping. internal/session/redispresence.Mirror
// satisfies this; a Registry with no mirror configured behaves exactly as
// before. Best-effort: a mirror write failure is logged, never returned to
// the caller, since losing the durable copy must not block a live connect
// or disconnect.
type PresenceMirror interface {
	MarkOnline(ctx context.Context, charID ulid.ULID) error
	MarkOffline(ctx context.Context, charID ulid.ULID) error
}

func copySession(s *Session) *Session {
	cursors := make(map[string]ulid.ULID, len(s.EventCursors))
	for k, v := range s.EventCursors {
		cursors[k] = v
	}
	connections := make([]ulid.ULID, len(s.Connections))
	copy(connections, s.Connections)

	return &Session{
		CharacterID:  s.CharacterID,
		Connections:  connections,
		EventCursors: cursors,
		LastActivity: s.LastActivity,
		Intentional:  s.Intentional,
	}
}

// Registry manages character sessions and is the one place that knows which
// connections are currently attached to which character.
type Registry struct {
	mu       sync.RWMutex
	sessions map[ulid.ULID]*Session // keyed by CharacterID
	bus      *event.Bus
	presence PresenceMirror // optional, can be nil

	countdownMu sync.Mutex
	countdowns  map[ulid.ULID]*RestCountdown // keyed by CharacterID
}

// RegistryOption configures an optional Registry collaborator.
type RegistryOption func(*Registry)

// WithPresenceMirror configures the registry to durably mirror online/
// offline transitions through mirror, in addition to its own in-memory map.
func WithPresenceMirror(mirror PresenceMirror) RegistryOption {
	return func(r *Registry) { r.presence = mirror }
}

// NewRegistry creates a session registry that publishes arrive/leave events
// on bus. bus may be nil for tests that don't care about event fan-out.
func NewRegistry(bus *event.Bus, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions:   make(map[ulid.ULID]*Session),
		bus:        bus,
		countdowns: make(map[ulid.ULID]*RestCountdown),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StartRestCountdown begins a rest countdown for charID and runs it to
// completion in a background goroutine, unless one is already running for
// that character. Returns false if a countdown was already in progress.
func (r *Registry) StartRestCountdown(ctx context.Context, charID ulid.ULID, duration time.Duration, notify func(string), disconnect func()) bool {
	r.countdownMu.Lock()
	if _, running := r.countdowns[charID]; running {
		r.countdownMu.Unlock()
		return false
	}
	cd := NewRestCountdown(charID, duration)
	r.countdowns[charID] = cd
	r.countdownMu.Unlock()

	go func() {
		cd.Run(ctx, notify, disconnect)
		r.countdownMu.Lock()
		delete(r.countdowns, charID)
		r.countdownMu.Unlock()
	}()
	return true
}

// CancelRestCountdown cancels charID's in-flight rest countdown, if any.
// Returns false if no countdown was running. Any activity that interrupts
// rest (movement, combat, another command) should call this.
func (r *Registry) CancelRestCountdown(charID ulid.ULID) bool {
	r.countdownMu.Lock()
	defer r.countdownMu.Unlock()

	cd, running := r.countdowns[charID]
	if !running {
		return false
	}
	cd.Cancel()
	return true
}

// CancelAllRestCountdowns cancels every in-flight rest countdown and returns
// how many were cancelled. Called during shutdown so no countdown outlives
// the server process it belongs to.
func (r *Registry) CancelAllRestCountdowns() int {
	r.countdownMu.Lock()
	defer r.countdownMu.Unlock()

	n := 0
	for _, cd := range r.countdowns {
		cd.Cancel()
		n++
	}
	return n
}

// Connect attaches a connection to a character's session, creating the
// session if this is the character's first connection. Returns a copy of
// the session to prevent external modification.
func (r *Registry) Connect(charID, connID ulid.ULID) *Session {
	r.mu.Lock()
	session, exists := r.sessions[charID]
	if !exists {
		session = &Session{
			CharacterID:  charID,
			Connections:  make([]ulid.ULID, 0, 1),
			EventCursors: make(map[string]ulid.ULID),
		}
		r.sessions[charID] = session
	}

	session.Connections = append(session.Connections, connID)
	session.LastActivity = time.Now()
	session.Intentional = false
	r.mu.Unlock()

	if r.bus != nil {
		r.bus.BroadcastGlobal(event.Event{
			ID:     ulid.Make(),
			Type:   event.TypeArrive,
			Actor:  event.Actor{Kind: event.ActorCharacter, ID: charID.String()},
			Stream: "global",
		})
	}

	if r.presence != nil {
		if err := r.presence.MarkOnline(context.Background(), charID); err != nil {
			slog.Warn("failed to mark presence online", "char_id", charID.String(), "error", err)
		}
	}

	return copySession(session)
}

// MarkIntentional flags a character's session as deliberately disconnecting,
// so the transport layer that notices the connection drop a moment later
// can tell a requested /quit apart from a dropped line and skip emitting a
// "connection lost" notice.
func (r *Registry) MarkIntentional(charID ulid.ULID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, exists := r.sessions[charID]; exists {
		session.Intentional = true
	}
}

// Disconnect removes a connection from a character's session. The session
// persists even with zero connections, so a reconnect can resume it.
func (r *Registry) Disconnect(charID, connID ulid.ULID) {
	r.mu.Lock()
	session, exists := r.sessions[charID]
	if !exists {
		r.mu.Unlock()
		slog.Debug("disconnect called for non-existent session",
			"char_id", charID.String(),
			"conn_id", connID.String(),
		)
		return
	}

	for i, id := range session.Connections {
		if id == connID {
			session.Connections = append(session.Connections[:i], session.Connections[i+1:]...)
			break
		}
	}
	intentional := session.Intentional
	remaining := len(session.Connections)
	r.mu.Unlock()

	if r.bus != nil && !intentional {
		r.bus.BroadcastGlobal(event.Event{
			ID:     ulid.Make(),
			Type:   event.TypeLeave,
			Actor:  event.Actor{Kind: event.ActorCharacter, ID: charID.String()},
			Stream: "global",
		})
	}

	if r.presence != nil && remaining == 0 {
		if err := r.presence.MarkOffline(context.Background(), charID); err != nil {
			slog.Warn("failed to mark presence offline", "char_id", charID.String(), "error", err)
		}
	}
}

// UpdateCursor records the last event a character's session has seen on a
// stream, the bookmark ReplayEvents uses to avoid re-delivering history.
func (r *Registry) UpdateCursor(charID ulid.ULID, stream string, eventID ulid.ULID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[charID]
	if !exists {
		slog.Debug("UpdateCursor called for non-existent session",
			"char_id", charID.String(), "stream", stream, "event_id", eventID.String())
		return
	}
	session.EventCursors[stream] = eventID
}

// GetSession returns a copy of a character's session, or nil if none exists.
func (r *Registry) GetSession(charID ulid.ULID) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[charID]
	if !exists {
		return nil
	}
	return copySession(session)
}

// GetConnections returns all connection IDs for a character.
func (r *Registry) GetConnections(charID ulid.ULID) []ulid.ULID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[charID]
	if !exists {
		return nil
	}
	result := make([]ulid.ULID, len(session.Connections))
	copy(result, session.Connections)
	return result
}

// EndSession completely removes a character's session from the registry.
func (r *Registry) EndSession(charID ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[charID]; !exists {
		return oops.Code("SESSION_NOT_FOUND").
			With("char_id", charID.String()).
			Errorf("session not found for character %s", charID.String())
	}
	delete(r.sessions, charID)
	return nil
}

// UpdateActivity refreshes the last-activity time for a character's session.
func (r *Registry) UpdateActivity(charID ulid.ULID) {
	r.mu.Lock()
	session, exists := r.sessions[charID]
	if !exists {
		r.mu.Unlock()
		slog.Debug("UpdateActivity called for non-existent session", "char_id", charID.String())
		return
	}
	session.LastActivity = time.Now()
	r.mu.Unlock()

	if r.presence != nil {
		if err := r.presence.MarkOnline(context.Background(), charID); err != nil {
			slog.Warn("failed to refresh presence", "char_id", charID.String(), "error", err)
		}
	}
}

// OnlinePlayerIDs returns the character IDs with at least one live
// connection, satisfying tick.OnlinePlayers so the scheduler can report an
// accurate active-player count on every game_tick broadcast.
func (r *Registry) OnlinePlayerIDs() []domain.PlayerId {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connected := lo.PickBy(r.sessions, func(_ ulid.ULID, session *Session) bool {
		return len(session.Connections) > 0
	})
	return lo.Keys(connected)
}

// ListActiveSessions returns copies of all active sessions.
func (r *Registry) ListActiveSessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		result = append(result, copySession(session))
	}
	return result
}

// SendToPlayer delivers ev to charID's personal stream via the registry's
// bus. A no-op if the registry was built without one.
func (r *Registry) SendToPlayer(charID ulid.ULID, ev event.Event) {
	if r.bus != nil {
		r.bus.SendPersonal(charID.String(), ev)
	}
}

// BroadcastRoom delivers ev to everyone subscribed to roomID, excluding
// excludeCharID if non-zero.
func (r *Registry) BroadcastRoom(roomID string, ev event.Event, excludeCharID ulid.ULID) {
	if r.bus == nil {
		return
	}
	var exclude string
	if excludeCharID != (ulid.ULID{}) {
		exclude = excludeCharID.String()
	}
	r.bus.BroadcastRoom(roomID, ev, exclude)
}

// SubscribeRoom subscribes to a room's event stream.
func (r *Registry) SubscribeRoom(roomID string) chan event.Event {
	if r.bus == nil {
		return nil
	}
	return r.bus.SubscribeRoom(roomID)
}
