// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package audit provides the command audit trail spec §6 calls out as part
// of the core's contract: an append-only record for every security-sensitive
// command (mute/unmute, admin grants, teleport/goto, and admin subcommands
// generally). It is modeled after the teacher's internal/access/policy/audit
// package, generalized from ABAC access decisions to command outcomes, with
// the same pluggable Sink shape (in-memory, SQLite, Postgres).
package audit

import (
	"context"
	"time"
)

// Record is a single audit entry, matching spec §6's append-only audit log
// shape exactly: {timestamp, playerId, command, success, resultSummary,
// sessionId, metadata}.
type Record struct {
	Timestamp     time.Time      `json:"timestamp"`
	PlayerID      string         `json:"player_id"`
	Command       string         `json:"command"`
	Success       bool           `json:"success"`
	ResultSummary string         `json:"result_summary"`
	SessionID     string         `json:"session_id"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Sink persists audit records. Implementations must not block the command
// path for long; Write is called synchronously from the dispatcher today,
// so a Sink that needs to be slow (a remote database) should queue
// internally and return quickly, the same shape the teacher's
// policy/audit.Writer gives WriteAsync.
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}

// sensitiveVariants are the command names spec §4.5 names explicitly as
// security-sensitive, regardless of capability.
var sensitiveVariants = map[string]bool{
	"mute":          true,
	"unmute":        true,
	"mute_global":   true,
	"unmute_global": true,
	"add_admin":     true,
	"teleport":      true,
	"goto":          true,
}

// IsSensitive reports whether a dispatched command should be audited: one
// of the spec's named variants, or any command gated by an "admin.*"
// capability ("any admin subcommands" per spec §4.5).
func IsSensitive(name string, capabilities []string) bool {
	if sensitiveVariants[name] {
		return true
	}
	for _, cap := range capabilities {
		if len(cap) >= len("admin.") && cap[:len("admin.")] == "admin." {
			return true
		}
	}
	return false
}
