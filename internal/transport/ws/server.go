// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mythosmud/mythosmud/internal/auth"
	"github.com/mythosmud/mythosmud/internal/command"
	"github.com/mythosmud/mythosmud/internal/core"
	"github.com/mythosmud/mythosmud/internal/event"
	"github.com/mythosmud/mythosmud/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// Server accepts WebSocket connections and hands each one to its own
// ConnectionHandler, wired to the shared engine, session registry, event
// bus, and command dispatcher.
type Server struct {
	addr       string
	verifier   auth.Verifier
	engine     *core.Engine
	sessions   *session.Registry
	bus        *event.Bus
	world      command.WorldService
	services   *command.Services
	dispatcher *command.Dispatcher

	onShutdownRequested func()

	httpServer *http.Server
}

// ServerConfig bundles the collaborators a Server wires into every connection.
type ServerConfig struct {
	Addr       string
	Verifier   auth.Verifier
	Engine     *core.Engine
	Sessions   *session.Registry
	Bus        *event.Bus
	World      command.WorldService
	Services   *command.Services
	Dispatcher *command.Dispatcher

	// OnShutdownRequested, if set, is called on every connection that
	// dispatches a successful "shutdown" command, letting the process
	// orchestrator that owns this server begin its shutdown sequence.
	OnShutdownRequested func()
}

// NewServer creates a WebSocket transport server listening on cfg.Addr.
func NewServer(cfg ServerConfig) *Server {
	return &Server{
		addr:                cfg.Addr,
		verifier:            cfg.Verifier,
		engine:              cfg.Engine,
		sessions:            cfg.Sessions,
		bus:                 cfg.Bus,
		world:               cfg.World,
		services:            cfg.Services,
		dispatcher:          cfg.Dispatcher,
		onShutdownRequested: cfg.OnShutdownRequested,
	}
}

// Addr returns the server's configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// ServeHTTP upgrades the request to a WebSocket and runs its connection
// handler until the socket closes or the request context is cancelled.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	handler := NewConnectionHandler(conn, HandlerConfig{
		Verifier:            s.verifier,
		Engine:              s.engine,
		Sessions:            s.sessions,
		Bus:                 s.bus,
		World:               s.world,
		Services:            s.services,
		Dispatcher:          s.dispatcher,
		OnShutdownRequested: s.onShutdownRequested,
	})
	handler.Handle(r.Context())
}

// Run starts the HTTP listener and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("websocket server started", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("websocket server failed: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return s.httpServer.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
