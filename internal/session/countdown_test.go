// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package session

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestCountdown_CompletesAndDisconnects(t *testing.T) {
	c := NewRestCountdown(ulid.Make(), 2*time.Millisecond)

	var notifications []string
	disconnected := false

	c.Run(context.Background(),
		func(msg string) { notifications = append(notifications, msg) },
		func() { disconnected = true })

	assert.Equal(t, CountdownCompleted, c.State())
	assert.True(t, disconnected, "countdown completion should disconnect the player")
}

func TestRestCountdown_CancelStopsBeforeDisconnect(t *testing.T) {
	c := NewRestCountdown(ulid.Make(), time.Hour)

	disconnected := false
	done := make(chan struct{})
	go func() {
		c.Run(context.Background(), func(string) {}, func() { disconnected = true })
		close(done)
	}()

	c.Cancel()
	<-done

	assert.Equal(t, CountdownCancelled, c.State())
	assert.False(t, disconnected, "a cancelled countdown must not disconnect the player")
}

func TestRestCountdown_Cancel_IsIdempotent(t *testing.T) {
	c := NewRestCountdown(ulid.Make(), time.Hour)
	require.Equal(t, CountdownIdle, c.State())

	// Cancel before Run leaves the state Idle until Run starts; verify it
	// doesn't panic on repeated calls either.
	c.Cancel()
	c.Cancel()
}

func TestRestCountdown_ContextCancellation(t *testing.T) {
	c := NewRestCountdown(ulid.Make(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, func(string) {}, func() {})
		close(done)
	}()

	cancel()
	<-done

	assert.Equal(t, CountdownCancelled, c.State())
}
