// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package redispresence durably mirrors which players are online, alongside
// session.Registry's in-memory bookkeeping, so "who's online" survives a
// process restart (or is shared across instances in a multi-instance
// deployment) instead of resetting to empty every time the process does.
// It is optional: session.Registry works standalone on its in-memory map,
// and falls back to that if no Mirror is configured.
package redispresence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mythosmud/mythosmud/internal/domain"
)

const (
	onlineKeyPrefix = "mythosmud:online:"
	// entryTTL outlives the refresh interval a caller is expected to use
	// (session.Registry refreshes on every UpdateActivity call), so a
	// crashed process's stale entries expire instead of lingering forever.
	entryTTL = 2 * time.Minute
)

// redisClient is the subset of *redis.Client's method set Mirror calls,
// narrowed so tests can fake it without a live Redis server.
type redisClient interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// Mirror records player online/offline state in Redis.
type Mirror struct {
	client redisClient
}

// New creates a Mirror backed by client. Pass redis.NewClient(&redis.Options{...})
// built from a configuration collaborator's REDIS_URL; a nil client would
// panic on first use, so callers that don't want durable presence should
// simply not construct a Mirror at all.
func New(client *redis.Client) *Mirror {
	return &Mirror{client: client}
}

func onlinePlayerKey(charID domain.PlayerId) string {
	return onlineKeyPrefix + charID.String()
}

// MarkOnline records charID as online with a refreshing TTL entry.
func (m *Mirror) MarkOnline(ctx context.Context, charID domain.PlayerId) error {
	if err := m.client.Set(ctx, onlinePlayerKey(charID), time.Now().UTC().Format(time.RFC3339), entryTTL).Err(); err != nil {
		return fmt.Errorf("redispresence: mark online: %w", err)
	}
	return nil
}

// MarkOffline removes charID's entry immediately, on a clean disconnect.
func (m *Mirror) MarkOffline(ctx context.Context, charID domain.PlayerId) error {
	if err := m.client.Del(ctx, onlinePlayerKey(charID)).Err(); err != nil {
		return fmt.Errorf("redispresence: mark offline: %w", err)
	}
	return nil
}

// OnlinePlayerIDs scans the mirror's keyspace for still-live entries. Unlike
// session.Registry's method of the same name it takes a context and returns
// an error, so it does not satisfy tick.OnlinePlayers.
func (m *Mirror) OnlinePlayerIDs(ctx context.Context) ([]domain.PlayerId, error) {
	var ids []domain.PlayerId

	iter := m.client.Scan(ctx, 0, onlineKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw := strings.TrimPrefix(iter.Val(), onlineKeyPrefix)
		id, err := ulid.Parse(raw)
		if err != nil {
			continue // a foreign key under our prefix; skip rather than fail the scan
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redispresence: scan online keys: %w", err)
	}
	return ids, nil
}

var _ interface {
	MarkOnline(context.Context, domain.PlayerId) error
	MarkOffline(context.Context, domain.PlayerId) error
} = (*Mirror)(nil)
