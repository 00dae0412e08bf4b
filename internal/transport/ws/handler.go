// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package ws is the inbound transport: one WebSocket connection per client,
// carrying JSON-encoded command strings in and Frame-encoded events out, per
// spec §6/§8. It replaces an earlier telnet prototype, no longer in this
// module, with the hardcoded test auth swapped for the real auth.Verifier and the
// ad hoc command switch swapped for the full command.Dispatcher.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/mythosmud/mythosmud/internal/access"
	"github.com/mythosmud/mythosmud/internal/auth"
	"github.com/mythosmud/mythosmud/internal/command"
	"github.com/mythosmud/mythosmud/internal/core"
	"github.com/mythosmud/mythosmud/internal/domain"
	"github.com/mythosmud/mythosmud/internal/event"
	"github.com/mythosmud/mythosmud/internal/session"
)

// defaultRole is the role a character is assigned the first time it
// connects, if the configured AccessControl supports role assignment at
// all (access.RoleAssigner). Admin capabilities are granted separately,
// out of band (see DefaultRoles in internal/access/permissions.go).
const defaultRole = "player"

// inbound is the wire shape of a client-to-server frame: a bearer token to
// authenticate the connection (sent once, on the first frame) and a command
// string to dispatch on every frame after that.
type inbound struct {
	Token   string `json:"token,omitempty"`
	Command string `json:"command,omitempty"`
}

// ConnectionHandler handles a single WebSocket connection end to end:
// authenticate, subscribe to the character's streams, replay missed events,
// then loop dispatching inbound commands and forwarding outbound events
// until the socket closes or ctx is cancelled.
type ConnectionHandler struct {
	conn     *websocket.Conn
	verifier auth.Verifier
	engine   *core.Engine
	sessions *session.Registry
	bus      *event.Bus
	world    command.WorldService
	services *command.Services
	dispatch *command.Dispatcher

	// onShutdownRequested, if set, is invoked when a dispatched command
	// returns command.ErrShutdownRequested, so the orchestrator that owns
	// the process can begin its shutdown sequence. Optional: a nil value
	// means this connection can't trigger one. The orchestrator sets it for
	// every connection its transport accepts.
	onShutdownRequested func()

	connID     ulid.ULID
	charID     ulid.ULID
	locationID domain.RoomId
	authed     bool

	// subscriptions holds the raw per-stream channels from the bus, keyed by
	// stream name, so Unsubscribe can find them again on room change/cleanup.
	// events is the single fan-in channel every subscription's forwarder
	// goroutine feeds; closing a subscription's bus channel (via Unsubscribe)
	// ends its forwarder goroutine, so no goroutine outlives its subscription.
	subscriptions map[string]chan event.Event
	events        chan event.Event
}

// HandlerConfig bundles a ConnectionHandler's collaborators.
type HandlerConfig struct {
	Verifier            auth.Verifier
	Engine              *core.Engine
	Sessions            *session.Registry
	Bus                 *event.Bus
	World               command.WorldService
	Services            *command.Services
	Dispatcher          *command.Dispatcher
	OnShutdownRequested func()
}

// NewConnectionHandler creates a handler for a freshly upgraded connection.
func NewConnectionHandler(conn *websocket.Conn, cfg HandlerConfig) *ConnectionHandler {
	return &ConnectionHandler{
		conn:                conn,
		verifier:            cfg.Verifier,
		engine:              cfg.Engine,
		sessions:            cfg.Sessions,
		bus:                 cfg.Bus,
		world:               cfg.World,
		services:            cfg.Services,
		dispatch:            cfg.Dispatcher,
		onShutdownRequested: cfg.OnShutdownRequested,
		connID:              ulid.Make(),
		subscriptions:       make(map[string]chan event.Event),
		events:              make(chan event.Event, 100),
	}
}

// addSubscription records ch under key and starts a forwarder goroutine that
// feeds h.events until ch is closed (by Unsubscribe).
func (h *ConnectionHandler) addSubscription(key string, ch chan event.Event) {
	h.subscriptions[key] = ch
	go func() {
		for ev := range ch {
			h.events <- ev
		}
	}()
}

// removeSubscription unsubscribes and forgets the stream at key, if present.
func (h *ConnectionHandler) removeSubscription(key string) {
	ch, ok := h.subscriptions[key]
	if !ok {
		return
	}
	h.bus.Unsubscribe(key, ch)
	delete(h.subscriptions, key)
}

// Handle processes the connection until ctx is cancelled or the socket
// closes. It mirrors the earlier telnet prototype's shape: one goroutine
// reading frames, a select loop fanning inbound commands and outbound
// events into the same dispatch path.
func (h *ConnectionHandler) Handle(ctx context.Context) {
	defer h.cleanup()

	lineCh := make(chan inbound)
	errCh := make(chan error, 1)

	go func() {
		for {
			var msg inbound
			if err := h.conn.ReadJSON(&msg); err != nil {
				errCh <- err
				return
			}
			lineCh <- msg
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-errCh:
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("connection read error", "conn_id", h.connID.String(), "error", err)
			}
			if h.authed {
				h.sessions.Disconnect(h.charID, h.connID)
			}
			return

		case msg := <-lineCh:
			h.processMessage(ctx, msg)

		case ev := <-h.events:
			if ev.Type == event.TypeDisconnect {
				h.sendEvent(ev)
				h.sessions.Disconnect(h.charID, h.connID)
				return
			}
			if ev.Actor.ID != h.charID.String() {
				h.sendEvent(ev)
			}
		}
	}
}

func (h *ConnectionHandler) processMessage(ctx context.Context, msg inbound) {
	if !h.authed {
		h.authenticate(ctx, msg.Token)
		return
	}
	if msg.Command == "" {
		return
	}

	subjectID := access.CharacterSubject(h.charID.String())
	exec, err := command.NewCommandExecution(command.CommandExecutionConfig{
		CharacterID: h.charID,
		LocationID:  h.locationID,
		PlayerID:    h.charID,
		SessionID:   h.connID,
		Output:      &frameWriter{handler: h},
		Services:    h.services,
	})
	if err != nil {
		slog.Error("failed to build command execution", "conn_id", h.connID.String(), "error", err)
		return
	}

	if err := h.dispatch.Dispatch(ctx, msg.Command, exec); err != nil {
		if errors.Is(err, command.ErrShutdownRequested) {
			if h.onShutdownRequested != nil {
				h.onShutdownRequested()
			}
			return
		}
		slog.Debug("command dispatch failed",
			"conn_id", h.connID.String(),
			"char_id", h.charID.String(),
			"error", err,
		)
		h.sendError(err)
		return
	}

	// A move handler may have changed the character's room; re-resolve it
	// so the next command's subject streams stay current.
	if loc, err := h.world.GetCharacterLocation(ctx, subjectID, h.charID); err == nil {
		h.resubscribeIfRoomChanged(loc)
	}
}

func (h *ConnectionHandler) authenticate(ctx context.Context, token string) {
	if h.verifier == nil {
		h.sendSystem("Authentication is not configured.")
		return
	}

	playerID, err := h.verifier.Verify(ctx, token)
	if err != nil {
		h.sendSystem("Invalid or expired token.")
		return
	}

	h.charID = playerID
	subjectID := access.CharacterSubject(h.charID.String())
	h.ensureDefaultRole(subjectID)

	loc, err := h.world.GetCharacterLocation(ctx, subjectID, h.charID)
	if err != nil {
		slog.Error("failed to resolve character location on connect",
			"char_id", h.charID.String(), "error", err)
		h.sendSystem("Could not resolve your location.")
		return
	}
	h.locationID = loc
	h.authed = true

	h.sessions.Connect(h.charID, h.connID)
	h.subscribeToRoom(loc)
	h.addSubscription("player:"+h.charID.String(), h.bus.SubscribePlayer(h.charID.String()))
	h.addSubscription("global", h.bus.SubscribeGlobal())

	h.sendSystem("connected")
	h.replayMissed(ctx)
}

// ensureDefaultRole grants a freshly connecting character the default
// "player" role, if the configured access control supports role assignment
// and the character doesn't already have one (e.g. an admin promoted
// earlier by add_admin).
func (h *ConnectionHandler) ensureDefaultRole(subjectID string) {
	assigner, ok := h.services.Access().(access.RoleAssigner)
	if !ok {
		return
	}
	if assigner.GetRole(subjectID) != "" {
		return
	}
	if err := assigner.AssignRole(subjectID, defaultRole); err != nil {
		slog.Error("failed to assign default role", "subject", subjectID, "error", err)
	}
}

func (h *ConnectionHandler) subscribeToRoom(loc domain.RoomId) {
	h.addSubscription("room:"+string(loc), h.bus.SubscribeRoom(string(loc)))
	h.addSubscription("location:"+string(loc), h.bus.Subscribe("location:"+string(loc), ""))
}

func (h *ConnectionHandler) resubscribeIfRoomChanged(loc domain.RoomId) {
	if loc == h.locationID {
		return
	}
	h.removeSubscription("room:" + string(h.locationID))
	h.removeSubscription("location:" + string(h.locationID))
	h.locationID = loc
	h.subscribeToRoom(loc)
}

func (h *ConnectionHandler) replayMissed(ctx context.Context) {
	stream := "location:" + string(h.locationID)
	events, err := h.engine.ReplayEvents(ctx, h.charID, stream, 50)
	if err != nil {
		slog.Error("failed to replay events on connect",
			"char_id", h.charID.String(), "stream", stream, "error", err)
		h.sendSystem("Warning: could not retrieve missed events.")
		return
	}
	for _, ev := range events {
		h.sendEvent(ev)
	}
}

func (h *ConnectionHandler) cleanup() {
	for stream, ch := range h.subscriptions {
		h.bus.Unsubscribe(stream, ch)
	}
	if err := h.conn.Close(); err != nil {
		slog.Debug("error closing connection", "error", err)
	}
}

func (h *ConnectionHandler) sendEvent(ev event.Event) {
	if err := h.conn.WriteJSON(frameFromEvent(ev)); err != nil {
		slog.Debug("failed to send event frame", "conn_id", h.connID.String(), "error", err)
	}
}

func (h *ConnectionHandler) sendSystem(message string) {
	payload, _ := json.Marshal(map[string]string{"message": message})
	h.writeRaw(string(event.TypeSystem), payload)
}

func (h *ConnectionHandler) sendError(err error) {
	payload, _ := json.Marshal(map[string]string{"message": err.Error()})
	h.writeRaw(string(event.TypeSystem), payload)
}

func (h *ConnectionHandler) writeRaw(eventType string, payload json.RawMessage) {
	frame := Frame{EventType: eventType, Data: payload}
	if err := h.conn.WriteJSON(frame); err != nil {
		slog.Debug("failed to send system frame", "conn_id", h.connID.String(), "error", err)
	}
}

// frameWriter adapts a ConnectionHandler into an io.Writer so command
// handlers that write to exec.Output() (look, status, help, ...) reach the
// client as system frames rather than needing their own transport awareness.
type frameWriter struct {
	handler *ConnectionHandler
}

func (w *frameWriter) Write(p []byte) (int, error) {
	w.handler.sendSystem(string(p))
	return len(p), nil
}
