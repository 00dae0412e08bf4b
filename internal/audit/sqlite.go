// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	// mattn/go-sqlite3 registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/oops"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS command_audit_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp      DATETIME NOT NULL,
	player_id      TEXT NOT NULL,
	command        TEXT NOT NULL,
	success        INTEGER NOT NULL,
	result_summary TEXT NOT NULL,
	session_id     TEXT NOT NULL,
	metadata       TEXT
);
`

// SQLiteSink is a Sink backed by a local SQLite file, for single-process
// deployments that want a durable audit trail without standing up Postgres.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (creating if necessary) a SQLite database at path and
// ensures the audit table exists.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, oops.With("path", path).Wrap(err)
	}
	return &SQLiteSink{db: db}, nil
}

// Write implements Sink.
func (s *SQLiteSink) Write(ctx context.Context, rec Record) error {
	metadataJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return oops.Wrap(err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO command_audit_log
			(timestamp, player_id, command, success, result_summary, session_id, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.PlayerID, rec.Command, rec.Success, rec.ResultSummary, rec.SessionID, metadataJSON,
	)
	if err != nil {
		return oops.With("player_id", rec.PlayerID).With("command", rec.Command).Wrap(err)
	}
	return nil
}

// Close implements Sink.
func (s *SQLiteSink) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing sqlite audit sink: %w", err)
	}
	return nil
}

var _ Sink = (*SQLiteSink)(nil)
