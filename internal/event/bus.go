// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package event

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/lo"
)

const globalStream = "global"

func playerStream(playerID string) string { return "player:" + playerID }
func roomStream(roomID string) string      { return "room:" + roomID }

// Bus distributes events to subscribers, grouped by stream. Events queued
// on the same stream are delivered in the order Broadcast was called for
// that stream, since each stream's subscriber channel is an ordinary FIFO
// Go channel fed by a single call site per Broadcast invocation.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]subscriber
}

type subscriber struct {
	ch      chan Event
	exclude string // subscriber's own player ID, used to implement broadcastRoom's exclude
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscriber)}
}

// Subscribe creates a channel receiving every event broadcast on stream.
// excludeID, if non-empty, is compared against broadcastRoom's exclude
// argument so a room broadcast can skip the sender's own connection.
func (b *Bus) Subscribe(stream, excludeID string) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 100)
	b.subs[stream] = append(b.subs[stream], subscriber{ch: ch, exclude: excludeID})
	return ch
}

// Unsubscribe removes a channel from a stream and closes it.
func (b *Bus) Unsubscribe(stream string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[stream]
	for i, sub := range subs {
		if sub.ch == ch {
			b.subs[stream] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// deliver fans event out to every subscriber of stream except the one
// (if any) whose excludeID matches exclude.
func (b *Bus) deliver(stream string, ev Event, exclude string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	recipients := lo.Filter(b.subs[stream], func(sub subscriber, _ int) bool {
		return exclude == "" || sub.exclude != exclude
	})

	for _, sub := range recipients {
		select {
		case sub.ch <- ev:
		default:
			slog.Warn("event dropped: subscriber buffer full",
				"stream", stream,
				"event_id", ev.ID.String(),
				"event_type", ev.Type,
			)
		}
	}
}

// SendPersonal delivers ev to a single player's stream.
func (b *Bus) SendPersonal(playerID string, ev Event) {
	ev.Stream = playerStream(playerID)
	b.deliver(ev.Stream, ev, "")
}

// BroadcastRoom delivers ev to every subscriber of roomID's stream, skipping
// the subscriber whose excludePlayerID matches (if any).
func (b *Bus) BroadcastRoom(roomID string, ev Event, excludePlayerID string) {
	ev.Stream = roomStream(roomID)
	b.deliver(ev.Stream, ev, excludePlayerID)
}

// BroadcastGlobal delivers ev to every subscriber of the global stream.
func (b *Bus) BroadcastGlobal(ev Event) {
	ev.Stream = globalStream
	b.deliver(globalStream, ev, "")
}

// SubscribeRoom is a convenience wrapper over Subscribe for room streams.
func (b *Bus) SubscribeRoom(roomID string) chan Event {
	return b.Subscribe(roomStream(roomID), "")
}

// SubscribePlayer is a convenience wrapper over Subscribe for a player's
// personal stream.
func (b *Bus) SubscribePlayer(playerID string) chan Event {
	return b.Subscribe(playerStream(playerID), "")
}

// SubscribeGlobal is a convenience wrapper over Subscribe for the global
// stream.
func (b *Bus) SubscribeGlobal() chan Event {
	return b.Subscribe(globalStream, "")
}

// Broadcast delivers ev to whichever stream it already names (set by a
// caller that built the envelope directly, e.g. the tick loop's game_tick).
// Unlike SendPersonal/BroadcastRoom/BroadcastGlobal it does not rewrite
// ev.Stream, so callers that know their own stream naming (room:, player:,
// or a custom one) can still reach the bus without the player/room helpers.
func (b *Bus) Broadcast(ev Event) {
	b.deliver(ev.Stream, ev, "")
}

// IsRoomStream reports whether stream names a room, for callers that need
// to branch on stream shape without parsing the prefix themselves.
func IsRoomStream(stream string) bool {
	return strings.HasPrefix(stream, "room:")
}
