// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package messaging

import (
	"context"
	"log/slog"
)

// NoopBus is the documented-but-unwired NATS seam: it satisfies Bus so a
// deployment can select it in configuration, logs once that no broker is
// actually connected, and then drops every publish. It exists so the
// "messaging collaborator" startup step in spec §6 has somewhere to point
// when an operator hasn't (or can't yet) configure a real broker, without
// the core fabricating a NATS client dependency that isn't in scope.
type NoopBus struct{}

// NewNoopBus creates a NoopBus and logs that no broker is connected.
// Connection failure is non-fatal per spec §6.
func NewNoopBus() *NoopBus {
	slog.Warn("messaging collaborator running without a broker; publishes will be dropped")
	return &NoopBus{}
}

// Publish implements Bus: a no-op.
func (NoopBus) Publish(context.Context, string, []byte) error { return nil }

// Subscribe implements Bus: returns a channel that never receives anything.
func (NoopBus) Subscribe(string) (<-chan Message, func()) {
	ch := make(chan Message)
	return ch, func() {}
}

// Close implements Bus: a no-op.
func (NoopBus) Close() error { return nil }

var _ Bus = NoopBus{}
