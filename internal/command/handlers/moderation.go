// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package handlers

import (
	"context"
	"time"

	"github.com/mythosmud/mythosmud/internal/command"
	"github.com/mythosmud/mythosmud/internal/domain"
)

// resolveTarget looks up exec.Command().Target as a character name and
// returns its ID, or ErrTargetNotFound if no such character exists.
func resolveTarget(ctx context.Context, exec *command.CommandExecution) (domain.PlayerId, error) {
	world := exec.Services().World()
	subjectID := "char:" + exec.CharacterID().String()
	id, err := world.FindCharacterByName(ctx, subjectID, exec.Command().Target)
	if err != nil {
		return domain.PlayerId{}, command.ErrTargetNotFound(exec.Command().Target) //nolint:wrapcheck // structured oops error
	}
	return id, nil
}

// MuteHandler mutes exec.Command().Target in room-local chat for
// exec.Command().Minutes minutes (0 means indefinite).
func MuteHandler(ctx context.Context, exec *command.CommandExecution) error {
	mod := exec.Services().Moderation()
	if mod == nil {
		return command.ErrNoModerationService() //nolint:wrapcheck // structured oops error
	}
	target, err := resolveTarget(ctx, exec)
	if err != nil {
		return err
	}
	until := muteUntil(exec.Command().Minutes)
	subjectID := "char:" + exec.CharacterID().String()
	if err := mod.Mute(ctx, subjectID, target, until); err != nil {
		return err
	}
	writeOutputf(ctx, exec, "mute", "%s has been muted.\n", exec.Command().Target)
	return nil
}

// UnmuteHandler lifts a room-local mute on exec.Command().Target.
func UnmuteHandler(ctx context.Context, exec *command.CommandExecution) error {
	mod := exec.Services().Moderation()
	if mod == nil {
		return command.ErrNoModerationService() //nolint:wrapcheck // structured oops error
	}
	target, err := resolveTarget(ctx, exec)
	if err != nil {
		return err
	}
	subjectID := "char:" + exec.CharacterID().String()
	if err := mod.Unmute(ctx, subjectID, target); err != nil {
		return err
	}
	writeOutputf(ctx, exec, "unmute", "%s has been unmuted.\n", exec.Command().Target)
	return nil
}

// MuteGlobalHandler mutes exec.Command().Target in the global chat channel.
func MuteGlobalHandler(ctx context.Context, exec *command.CommandExecution) error {
	mod := exec.Services().Moderation()
	if mod == nil {
		return command.ErrNoModerationService() //nolint:wrapcheck // structured oops error
	}
	target, err := resolveTarget(ctx, exec)
	if err != nil {
		return err
	}
	until := muteUntil(exec.Command().Minutes)
	subjectID := "char:" + exec.CharacterID().String()
	if err := mod.MuteGlobal(ctx, subjectID, target, until); err != nil {
		return err
	}
	writeOutputf(ctx, exec, "mute_global", "%s has been muted globally.\n", exec.Command().Target)
	return nil
}

// UnmuteGlobalHandler lifts a global-channel mute on exec.Command().Target.
func UnmuteGlobalHandler(ctx context.Context, exec *command.CommandExecution) error {
	mod := exec.Services().Moderation()
	if mod == nil {
		return command.ErrNoModerationService() //nolint:wrapcheck // structured oops error
	}
	target, err := resolveTarget(ctx, exec)
	if err != nil {
		return err
	}
	subjectID := "char:" + exec.CharacterID().String()
	if err := mod.UnmuteGlobal(ctx, subjectID, target); err != nil {
		return err
	}
	writeOutputf(ctx, exec, "unmute_global", "%s has been unmuted globally.\n", exec.Command().Target)
	return nil
}

// AddAdminHandler grants the admin capability set to exec.Command().Target.
func AddAdminHandler(ctx context.Context, exec *command.CommandExecution) error {
	mod := exec.Services().Moderation()
	if mod == nil {
		return command.ErrNoModerationService() //nolint:wrapcheck // structured oops error
	}
	target, err := resolveTarget(ctx, exec)
	if err != nil {
		return err
	}
	subjectID := "char:" + exec.CharacterID().String()
	if err := mod.GrantAdmin(ctx, subjectID, target); err != nil {
		return err
	}
	writeOutputf(ctx, exec, "add_admin", "%s is now an admin.\n", exec.Command().Target)
	return nil
}

// muteUntil converts a duration in minutes to an absolute deadline. Zero
// minutes (unmute's sibling commands don't set this, but mute may omit a
// duration) means an indefinite mute.
func muteUntil(minutes int) time.Time {
	if minutes <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(minutes) * time.Minute)
}
