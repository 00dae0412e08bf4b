// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package audit

import (
	"context"
	"sync"
)

// MemorySink is an in-memory Sink, the default when no durable backend is
// configured and what tests assert against directly instead of querying a
// database.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write implements Sink.
func (s *MemorySink) Write(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Close implements Sink. A no-op: MemorySink owns no external resource.
func (s *MemorySink) Close() error { return nil }

// Records returns a copy of every record written so far, oldest first.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

var _ Sink = (*MemorySink)(nil)
