// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/oops"

	"github.com/mythosmud/mythosmud/internal/command"
)

// MoveHandler navigates the character through an exit in the given direction.
// The direction is matched case-insensitively against exit names and aliases.
func MoveHandler(ctx context.Context, exec *command.CommandExecution) error {
	direction := strings.TrimSpace(exec.Args)
	if direction == "" {
		return oops.Code(command.CodeInvalidArgs).
			With("command", "move").
			With("usage", "move <direction>").
			Errorf("no direction specified")
	}

	subjectID := "char:" + exec.CharacterID().String()

	// Get exits from current room
	exits, err := exec.Services().World().GetExits(ctx, subjectID, exec.LocationID())
	if err != nil {
		return oops.Code(command.CodeWorldError).
			With("message", "You can't see any way out.").
			Wrap(err)
	}

	// Find matching exit
	for _, exit := range exits {
		if !exit.MatchesName(direction) {
			continue
		}

		// Move the character
		if err := exec.Services().World().MoveCharacter(ctx, subjectID, exec.CharacterID(), exit.ToRoomID); err != nil {
			return oops.Code(command.CodeWorldError).
				With("message", "Something prevents you from going that way.").
				Wrap(err)
		}

		// Show the new room
		room, err := exec.Services().World().GetRoom(ctx, subjectID, exit.ToRoomID)
		if err != nil {
			return oops.Code(command.CodeWorldError).
				With("message", "You arrive somewhere strange...").
				Wrap(err)
		}

		//nolint:errcheck // output write error is acceptable; player display is best-effort
		_, _ = fmt.Fprintf(exec.Output(), "%s\n%s\n", room.Name, room.Description)
		return nil
	}

	return oops.Code(command.CodeWorldError).
		With("message", "You can't go that way.").
		Errorf("no exit matching %q", direction)
}
