// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package core provides the reconnect-replay engine: the piece of the
// session lifecycle that hands a freshly attached transport whatever events
// it missed while disconnected. Command handlers persist and broadcast their
// own events directly (see internal/command/handlers/chat.go); this engine
// is only consulted on attach, per the C6 connection manager's replay step.
package core

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/mythosmud/mythosmud/internal/event"
	"github.com/mythosmud/mythosmud/internal/session"
)

// Engine ties the event store and session registry together to resolve how
// far behind a reconnecting character's session is on a stream.
type Engine struct {
	store    event.Store
	sessions *session.Registry
}

// NewEngine creates a new replay engine.
func NewEngine(store event.Store, sessions *session.Registry) *Engine {
	return &Engine{store: store, sessions: sessions}
}

// ReplayEvents returns missed events for a character, resuming after
// whatever cursor their session has recorded for stream.
func (e *Engine) ReplayEvents(ctx context.Context, charID ulid.ULID, stream string, limit int) ([]event.Event, error) {
	var afterID ulid.ULID
	if e.sessions != nil {
		if s := e.sessions.GetSession(charID); s != nil {
			afterID = s.EventCursors[stream]
		}
	}
	events, err := e.store.Replay(ctx, stream, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to replay events: %w", err)
	}
	return events, nil
}
