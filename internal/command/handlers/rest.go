// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mythosmud/mythosmud/internal/command"
	"github.com/mythosmud/mythosmud/internal/event"
)

// RestHandler begins an idle-disconnect countdown for the character, unless
// the current room is flagged a rest location, in which case rest completes
// instantly with no countdown at all.
//
// Usage: rest
func RestHandler(ctx context.Context, exec *command.CommandExecution) error {
	isRestLocation, err := exec.Services().World().IsRestLocation(ctx, exec.LocationID())
	if err != nil {
		return command.WorldError("Something prevents you from resting here.", err)
	}
	if isRestLocation {
		//nolint:errcheck // output write error is acceptable; player display is best-effort
		_, _ = fmt.Fprintln(exec.Output(), "You settle in and rest undisturbed.")
		return nil
	}

	countdowns := exec.Services().Countdowns()
	if countdowns == nil {
		//nolint:errcheck // output write error is acceptable; player display is best-effort
		_, _ = fmt.Fprintln(exec.Output(), "Resting is not available right now.")
		return nil
	}

	charID := exec.CharacterID()
	broadcaster := exec.Services().Broadcaster()

	notify := func(message string) {
		//nolint:errcheck // output write error is acceptable; player display is best-effort
		_, _ = fmt.Fprintln(exec.Output(), message)
	}
	disconnect := func() {
		//nolint:errcheck // output write error is acceptable; player display is best-effort
		_, _ = fmt.Fprintln(exec.Output(), "You drift off and disconnect.")
		if broadcaster == nil {
			return
		}
		payload, _ := json.Marshal(map[string]string{"reason": "rest countdown completed"}) //nolint:errcheck
		broadcaster.Broadcast(event.Event{
			ID:        ulid.Make(),
			Stream:    "player:" + charID.String(),
			Type:      event.TypeDisconnect,
			Timestamp: time.Now(),
			Actor:     event.Actor{Kind: event.ActorSystem},
			Payload:   payload,
		})
	}

	if !countdowns.StartRestCountdown(ctx, charID, 0, notify, disconnect) {
		//nolint:errcheck // output write error is acceptable; player display is best-effort
		_, _ = fmt.Fprintln(exec.Output(), "You are already resting.")
		return nil
	}

	//nolint:errcheck // output write error is acceptable; player display is best-effort
	_, _ = fmt.Fprintln(exec.Output(), "You begin to rest. Any activity will interrupt you.")
	return nil
}
