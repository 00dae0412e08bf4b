// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package messaging provides the optional pub/sub collaborator spec §6
// describes as "NATS-shaped": a bus the core publishes combat,
// mortally-wounded, and death events through. It is a separate concern from
// internal/event.Bus, which fans live game events out to connected
// transports — messaging is for cross-process/cross-service notifications a
// deployment may want routed through a real broker.
//
// github.com/nats-io/nats.go does not appear anywhere in the retrieved
// reference pack, so no concrete NATS client is wired; Bus stays an
// interface with an in-memory implementation and a documented no-op stub,
// per DESIGN.md.
package messaging

import "context"

// Message is a single published notification.
type Message struct {
	Subject string
	Payload []byte
}

// Bus is the messaging collaborator the orchestrator wires at startup and
// stops during shutdown. Connection failures during startup are non-fatal
// per spec §6; a Bus that can't reach its broker should still construct
// successfully and simply drop publishes until reachable.
type Bus interface {
	// Publish sends payload on subject to every current subscriber.
	Publish(ctx context.Context, subject string, payload []byte) error

	// Subscribe returns a channel receiving every message published on
	// subject, and an unsubscribe function the caller must call when done.
	Subscribe(subject string) (<-chan Message, func())

	// Close stops the bus and releases any connection it holds.
	Close() error
}
