// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package obslog provides structured logging with OpenTelemetry trace context.
package obslog

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// ServiceName identifies this module's logs across every entrypoint that
// calls Setup, so a single Loki/ELK query finds all of mythosmud's output
// regardless of which subcommand produced it.
const ServiceName = "mythosmud"

// traceHandler wraps a slog.Handler to add trace context plus the service,
// version, and component that produced the record.
type traceHandler struct {
	handler   slog.Handler
	service   string
	version   string
	component string
}

// Handle adds service/version/component and trace context to the record.
func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)
	if h.component != "" {
		r.AddAttrs(slog.String("component", h.component))
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", spanCtx.TraceID().String()))
	}
	if spanCtx.HasSpanID() {
		r.AddAttrs(slog.String("span_id", spanCtx.SpanID().String()))
	}

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.handler.Handle(ctx, r)
}

// Enabled returns true if the level is enabled.
func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs returns a new handler with the given attributes.
func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{
		handler:   h.handler.WithAttrs(attrs),
		service:   h.service,
		version:   h.version,
		component: h.component,
	}
}

// WithGroup returns a new handler with the given group.
func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{
		handler:   h.handler.WithGroup(name),
		service:   h.service,
		version:   h.version,
		component: h.component,
	}
}

// WithComponent returns a logger tagging every record with component, e.g.
// "tick", "telnet", "ws" — so a single process's multiplexed subsystems can
// be filtered apart in aggregated logs.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if th, ok := logger.Handler().(*traceHandler); ok {
		return slog.New(&traceHandler{
			handler:   th.handler,
			service:   th.service,
			version:   th.version,
			component: component,
		})
	}
	return logger.With(slog.String("component", component))
}

// Setup creates a configured slog.Logger.
// format: "json" or "text" (defaults to "json" if empty)
// If w is nil, writes to os.Stderr.
func Setup(service, version, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	var baseHandler slog.Handler
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	if format == "text" {
		baseHandler = slog.NewTextHandler(w, opts)
	} else {
		baseHandler = slog.NewJSONHandler(w, opts)
	}

	handler := &traceHandler{
		handler: baseHandler,
		service: service,
		version: version,
	}

	return slog.New(handler)
}

// SetDefault sets up and configures the default logger.
func SetDefault(service, version, format string) {
	logger := Setup(service, version, format, nil)
	slog.SetDefault(logger)
}

// SetupDefault is a convenience over Setup that always uses ServiceName,
// for entrypoints that don't need a custom service label.
func SetupDefault(version, format string, w io.Writer) *slog.Logger {
	return Setup(ServiceName, version, format, w)
}
