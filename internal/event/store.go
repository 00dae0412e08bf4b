// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package event

import (
	"context"
	"errors"
	"sync"

	"github.com/oklog/ulid/v2"
)

// ErrStreamEmpty is returned when a stream has no events.
var ErrStreamEmpty = errors.New("stream is empty")

// Store persists and replays events, giving a reconnecting session a way to
// catch up on what it missed (spec's replay-on-reconnect requirement).
type Store interface {
	// Append persists an event to a stream.
	Append(ctx context.Context, event Event) error

	// Replay returns up to limit events from a stream, starting after afterID.
	// If afterID is the zero ULID, starts from the beginning.
	Replay(ctx context.Context, stream string, afterID ulid.ULID, limit int) ([]Event, error)

	// LastEventID returns the most recent event ID for a stream.
	LastEventID(ctx context.Context, stream string) (ulid.ULID, error)

	// Subscribe starts listening for new events on the given stream.
	// Returns a channel of event IDs and an error channel; the caller uses
	// Replay to fetch full events by ID. Channels close when ctx is done.
	Subscribe(ctx context.Context, stream string) (eventCh <-chan ulid.ULID, errCh <-chan error, err error)
}

// MemoryStore is an in-memory Store, used by tests and as the default when
// no durable backend is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]Event
}

// NewMemoryStore creates a new in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[string][]Event)}
}

// Append persists an event to the in-memory store.
func (s *MemoryStore) Append(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streams[ev.Stream] = append(s.streams[ev.Stream], ev)
	return nil
}

// Replay returns events from a stream starting after the given ID.
func (s *MemoryStore) Replay(_ context.Context, stream string, afterID ulid.ULID, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.streams[stream]
	if len(events) == 0 {
		return nil, nil
	}

	startIdx := 0
	if afterID.Compare(ulid.ULID{}) != 0 {
		for i, e := range events {
			if e.ID == afterID {
				startIdx = i + 1
				break
			}
		}
	}

	endIdx := min(startIdx+limit, len(events))

	result := make([]Event, endIdx-startIdx)
	copy(result, events[startIdx:endIdx])
	return result, nil
}

// LastEventID returns the most recent event ID for a stream.
func (s *MemoryStore) LastEventID(_ context.Context, stream string) (ulid.ULID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.streams[stream]
	if len(events) == 0 {
		return ulid.ULID{}, ErrStreamEmpty
	}
	return events[len(events)-1].ID, nil
}

// Subscribe returns channels that close when ctx is cancelled. The
// in-memory store has no out-of-process notification mechanism, so callers
// fall back to polling Replay. No other Store implementation exists in this
// module.
func (s *MemoryStore) Subscribe(ctx context.Context, _ string) (eventCh <-chan ulid.ULID, errCh <-chan error, err error) {
	events := make(chan ulid.ULID)
	errs := make(chan error)

	go func() {
		<-ctx.Done()
		close(events)
		close(errs)
	}()

	return events, errs, nil
}
