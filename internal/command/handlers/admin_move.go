// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package handlers

import (
	"context"

	"github.com/samber/oops"

	"github.com/mythosmud/mythosmud/internal/command"
)

// TeleportHandler brings exec.Command().Target to the admin's current room.
func TeleportHandler(ctx context.Context, exec *command.CommandExecution) error {
	world := exec.Services().World()
	subjectID := "char:" + exec.CharacterID().String()

	target, err := resolveTarget(ctx, exec)
	if err != nil {
		return err
	}

	if err := world.MoveCharacter(ctx, subjectID, target, exec.LocationID()); err != nil {
		return command.ErrTargetNotFound(exec.Command().Target) //nolint:wrapcheck // structured oops error
	}
	writeOutputf(ctx, exec, "teleport", "%s has been teleported to you.\n", exec.Command().Target)
	return nil
}

// GotoHandler moves the admin to exec.Command().Target's current room.
func GotoHandler(ctx context.Context, exec *command.CommandExecution) error {
	world := exec.Services().World()
	subjectID := "char:" + exec.CharacterID().String()

	target, err := resolveTarget(ctx, exec)
	if err != nil {
		return err
	}

	toRoom, err := world.GetCharacterLocation(ctx, subjectID, target)
	if err != nil {
		return command.ErrTargetNotFound(exec.Command().Target) //nolint:wrapcheck // structured oops error
	}

	if err := world.MoveCharacter(ctx, subjectID, exec.CharacterID(), toRoom); err != nil {
		return oops.Code(command.CodeWorldError).
			With("message", "Something prevents you from going there.").
			Wrap(err)
	}

	room, err := world.GetRoom(ctx, subjectID, toRoom)
	if err != nil {
		return oops.Code(command.CodeWorldError).
			With("message", "You arrive somewhere strange...").
			Wrap(err)
	}
	writeOutputf(ctx, exec, "goto", "%s\n%s\n", room.Name, room.Description)
	return nil
}
