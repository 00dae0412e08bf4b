// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package adminhttp exposes the operational surface for the MythosMUD
// orchestrator: Prometheus metrics, Kubernetes-style liveness/readiness
// probes, and a read-only session introspection endpoint. None of this is
// game management — it's ops tooling for whatever deploys the process.
package adminhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mythosmud/mythosmud/internal/session"
)

// ReadinessChecker returns whether the service is ready to accept connections.
type ReadinessChecker func() bool

// Metrics contains custom Prometheus metrics for MythosMUD.
type Metrics struct {
	ConnectionsTotal *prometheus.CounterVec
	RequestsTotal    *prometheus.CounterVec
}

// NewMetrics creates and registers custom MythosMUD metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mythosmud_connections_total",
				Help: "Total number of connections by type",
			},
			[]string{"type"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mythosmud_requests_total",
				Help: "Total number of requests by type and status",
			},
			[]string{"type", "status"},
		),
	}

	reg.MustRegister(m.ConnectionsTotal)
	reg.MustRegister(m.RequestsTotal)

	return m
}

// Server provides HTTP endpoints for observability and introspection.
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	registry   *prometheus.Registry
	metrics    *Metrics
	isReady    ReadinessChecker
	sessions   *session.Registry
	running    atomic.Bool
}

// NewServer creates a new admin HTTP server. sessions may be nil, in which
// case /debug/sessions reports an empty list instead of panicking.
func NewServer(addr string, readinessChecker ReadinessChecker, sessions *session.Registry) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics := NewMetrics(registry)

	return &Server{
		addr:     addr,
		registry: registry,
		metrics:  metrics,
		isReady:  readinessChecker,
		sessions: sessions,
	}
}

// Metrics returns the custom metrics for recording application events.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start begins serving the admin HTTP endpoints. The returned channel
// receives at most one error from Serve after Start returns (a bind
// problem after the listener hands off, e.g. a misbehaving middleware
// panicking the accept loop) and is closed on a clean Stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("admin server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleLiveness).Methods(http.MethodGet)
	router.HandleFunc("/readyz", s.handleReadiness).Methods(http.MethodGet)
	router.HandleFunc("/debug/sessions", s.handleDebugSessions).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := s.httpServer.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("admin server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("admin server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the admin HTTP server. A single CompareAndSwap
// gates the actual shutdown so concurrent Stop calls are safe: exactly one
// caller runs httpServer.Shutdown, the rest return nil immediately. If
// Shutdown fails (e.g. ctx expires with a connection still active), running
// is restored to true so Stop can be retried.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return fmt.Errorf("failed to shutdown admin server: %w", err)
		}
	}

	slog.Info("admin server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if s.isReady == nil || s.isReady() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
		return
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready\n"))
}

// sessionSummary is the wire shape for /debug/sessions, deliberately
// omitting connection/cursor detail that isn't useful for an operator
// glancing at who is online.
type sessionSummary struct {
	CharacterID  string    `json:"character_id"`
	Connections  int       `json:"connections"`
	LastActivity time.Time `json:"last_activity"`
}

func (s *Server) handleDebugSessions(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if s.sessions == nil {
		_ = json.NewEncoder(w).Encode([]sessionSummary{})
		return
	}

	active := s.sessions.ListActiveSessions()
	out := make([]sessionSummary, 0, len(active))
	for _, sess := range active {
		out = append(out, sessionSummary{
			CharacterID:  sess.CharacterID.String(),
			Connections:  len(sess.Connections),
			LastActivity: sess.LastActivity,
		})
	}

	if err := json.NewEncoder(w).Encode(out); err != nil {
		slog.Error("failed to encode session debug response", "error", err)
	}
}
