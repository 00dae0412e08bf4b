// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// CountdownState is a rest countdown's position in its Idle→Counting→
// Completed/Cancelled state machine.
type CountdownState int

const (
	CountdownIdle CountdownState = iota
	CountdownCounting
	CountdownCompleted
	CountdownCancelled
)

// DefaultRestCountdownDuration is how long a rest countdown runs before
// disconnecting an idle player, matching the teacher domain's ten-second
// grace period.
const DefaultRestCountdownDuration = 10 * time.Second

// RestCountdown runs a per-second countdown for a resting character,
// notifying them each second and disconnecting them when it completes
// unless Cancel is called first (by any activity that interrupts rest).
type RestCountdown struct {
	CharID   ulid.ULID
	Duration time.Duration

	state      CountdownState
	cancel     chan struct{}
	cancelOnce sync.Once
}

// NewRestCountdown creates a countdown for charID using duration, or
// DefaultRestCountdownDuration if duration is zero.
func NewRestCountdown(charID ulid.ULID, duration time.Duration) *RestCountdown {
	if duration <= 0 {
		duration = DefaultRestCountdownDuration
	}
	return &RestCountdown{
		CharID:   charID,
		Duration: duration,
		state:    CountdownIdle,
		cancel:   make(chan struct{}),
	}
}

// State reports the countdown's current state.
func (c *RestCountdown) State() CountdownState {
	return c.state
}

// Cancel interrupts a running countdown. Safe to call more than once or
// after the countdown has already completed; only the first call has any
// effect. A Cancel made before Run starts makes Run end as cancelled.
func (c *RestCountdown) Cancel() {
	c.cancelOnce.Do(func() { close(c.cancel) })
}

// Run drives the countdown to completion or cancellation, sending a
// message to the player once per second via notify and disconnecting them
// via disconnect when the duration elapses uninterrupted. It blocks until
// the countdown reaches CountdownCompleted or CountdownCancelled, or ctx is
// done.
func (c *RestCountdown) Run(ctx context.Context, notify func(message string), disconnect func()) {
	c.state = CountdownCounting
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	remaining := int(c.Duration / time.Second)
	for remaining > 0 {
		select {
		case <-c.cancel:
			c.state = CountdownCancelled
			slog.Debug("rest countdown cancelled", "char_id", c.CharID.String())
			return
		case <-ctx.Done():
			c.state = CountdownCancelled
			return
		case <-ticker.C:
			remaining--
			if remaining > 0 {
				plural := "s"
				if remaining == 1 {
					plural = ""
				}
				notify(fmt.Sprintf("You will disconnect in %d second%s...", remaining, plural))
			}
		}
	}

	select {
	case <-c.cancel:
		c.state = CountdownCancelled
		return
	default:
	}

	c.state = CountdownCompleted
	disconnect()
}
