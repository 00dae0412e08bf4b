// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package handlers provides command handler implementations.
package handlers

import (
	"context"
	"errors"

	"github.com/samber/oops"

	"github.com/mythosmud/mythosmud/internal/access"
	"github.com/mythosmud/mythosmud/internal/command"
)

// LookHandler displays the current room's name and description.
func LookHandler(ctx context.Context, exec *command.CommandExecution) error {
	subjectID := access.CharacterSubject(exec.CharacterID().String())

	room, err := exec.Services().World().GetRoom(ctx, subjectID, exec.LocationID())
	if err != nil {
		// Preserve access evaluation failures with their specific codes (e.g., ROOM_ACCESS_EVALUATION_FAILED)
		// instead of masking them as generic WORLD_ERROR
		if errors.Is(err, command.ErrAccessEvaluationFailed) {
			return err //nolint:wrapcheck // preserve oops error code from world service
		}
		return oops.Code(command.CodeWorldError).
			With("message", "You can't see anything here.").
			Wrap(err)
	}

	// Output write errors are logged but don't fail the command - the game action succeeded
	writeLocationOutput(ctx, exec, "look", room.Name, room.Description)
	return nil
}
