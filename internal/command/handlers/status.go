// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package handlers

import (
	"context"

	"github.com/mythosmud/mythosmud/internal/command"
)

// StatusHandler displays the caller's character name and current location.
func StatusHandler(ctx context.Context, exec *command.CommandExecution) error {
	subjectID := "char:" + exec.CharacterID().String()

	room, err := exec.Services().World().GetRoom(ctx, subjectID, exec.LocationID())
	if err != nil {
		writeOutputf(ctx, exec, "status", "%s\n", exec.CharacterName())
		return nil
	}
	writeOutputf(ctx, exec, "status", "%s — %s\n", exec.CharacterName(), room.Name)
	return nil
}

// InventoryHandler lists the items the caller's character is carrying.
func InventoryHandler(ctx context.Context, exec *command.CommandExecution) error {
	subjectID := "char:" + exec.CharacterID().String()

	items, err := exec.Services().World().GetInventory(ctx, subjectID, exec.CharacterID())
	if err != nil {
		return err //nolint:wrapcheck // WorldService returns structured oops errors
	}
	if len(items) == 0 {
		writeOutput(ctx, exec, "inventory", "You aren't carrying anything.")
		return nil
	}
	writeOutput(ctx, exec, "inventory", "You are carrying:")
	for _, item := range items {
		writeOutputf(ctx, exec, "inventory", "  %s\n", item)
	}
	return nil
}
