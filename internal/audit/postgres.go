// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	// lib/pq registers the "postgres" driver.
	_ "github.com/lib/pq"
	"github.com/samber/oops"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS command_audit_log (
	id             BIGSERIAL PRIMARY KEY,
	timestamp      TIMESTAMPTZ NOT NULL,
	player_id      TEXT NOT NULL,
	command        TEXT NOT NULL,
	success        BOOLEAN NOT NULL,
	result_summary TEXT NOT NULL,
	session_id     TEXT NOT NULL,
	metadata       JSONB
);
`

// PostgresSink is a Sink backed by Postgres, batching writes the same way
// the teacher's policy/audit.PostgresWriter batches ABAC decisions: queued
// on a channel, flushed on a size or time threshold, never blocking the
// command path on a round trip per record.
type PostgresSink struct {
	db          *sql.DB
	queue       chan Record
	stopChan    chan struct{}
	wg          sync.WaitGroup
	batchSize   int
	flushPeriod time.Duration
}

// NewPostgresSink opens a connection to dsn, ensures the audit table
// exists, and starts the background batch writer.
func NewPostgresSink(dsn string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		_ = db.Close()
		return nil, oops.Wrap(err)
	}

	s := &PostgresSink{
		db:          db,
		queue:       make(chan Record, 1000),
		stopChan:    make(chan struct{}),
		batchSize:   100,
		flushPeriod: time.Second,
	}
	s.wg.Add(1)
	go s.batchConsumer()
	return s, nil
}

// Write implements Sink. It queues rec for the batch consumer and returns
// immediately unless the queue is full, in which case the record is written
// synchronously so a burst never silently drops an audit record.
func (s *PostgresSink) Write(ctx context.Context, rec Record) error {
	select {
	case s.queue <- rec:
		return nil
	default:
		return s.writeBatch(ctx, []Record{rec})
	}
}

func (s *PostgresSink) batchConsumer() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushPeriod)
	defer ticker.Stop()

	var batch []Record
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.writeBatch(ctx, batch); err != nil {
			slog.Error("failed to write audit batch", "error", err, "count", len(batch))
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case rec := <-s.queue:
			batch = append(batch, rec)
			if len(batch) >= s.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopChan:
			for {
				select {
				case rec := <-s.queue:
					batch = append(batch, rec)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *PostgresSink) writeBatch(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return oops.Wrap(err)
	}
	defer func() {
		//nolint:errcheck // rollback error is expected once the transaction commits
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO command_audit_log
			(timestamp, player_id, command, success, result_summary, session_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return oops.Wrap(err)
	}
	defer func() {
		//nolint:errcheck // statement closes with the transaction regardless
		_ = stmt.Close()
	}()

	for i := range records {
		rec := &records[i]
		metadataJSON, err := json.Marshal(rec.Metadata)
		if err != nil {
			slog.Error("failed to marshal audit metadata", "error", err, "command", rec.Command)
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			rec.Timestamp, rec.PlayerID, rec.Command, rec.Success, rec.ResultSummary, rec.SessionID, metadataJSON,
		); err != nil {
			slog.Error("failed to insert audit record", "error", err, "command", rec.Command)
		}
	}

	if err := tx.Commit(); err != nil {
		return oops.Wrap(err)
	}
	return nil
}

// Close implements Sink: stops the batch consumer, draining any queued
// records, then closes the database connection.
func (s *PostgresSink) Close() error {
	close(s.stopChan)
	s.wg.Wait()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing postgres audit sink: %w", err)
	}
	return nil
}

var _ Sink = (*PostgresSink)(nil)
