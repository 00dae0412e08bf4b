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

// publishChat builds and stores an event for a chat-shaped command (say,
// local, global, emote, pose), broadcasting it if a broadcaster is
// configured. It mirrors the core engine's persist-then-broadcast sequence:
// a stream write that fails aborts the command; a broadcast is best-effort.
func publishChat(ctx context.Context, exec *command.CommandExecution, stream string, typ event.Type, payload []byte) error {
	ev := event.Event{
		ID:        ulid.Make(),
		Stream:    stream,
		Type:      typ,
		Timestamp: time.Now(),
		Actor:     event.Actor{Kind: event.ActorCharacter, ID: exec.CharacterID().String()},
		Payload:   payload,
	}

	if err := exec.Services().Events().Append(ctx, ev); err != nil {
		return fmt.Errorf("failed to append %s event: %w", typ, err)
	}
	if bc := exec.Services().Broadcaster(); bc != nil {
		bc.Broadcast(ev)
	}
	return nil
}

// chatPayload marshals a single-field chat message payload. Say, local, and
// global all share this shape; only the target stream and event type differ.
func chatPayload(field, value string) ([]byte, error) {
	switch field {
	case "message", "action":
		payload, err := json.Marshal(map[string]string{field: value})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", field, err)
		}
		return payload, nil
	default:
		return nil, fmt.Errorf("chatPayload: unknown field %q", field)
	}
}

// SayHandler broadcasts exec.Command().Message to the character's room.
func SayHandler(ctx context.Context, exec *command.CommandExecution) error {
	payload, err := chatPayload("message", exec.Command().Message)
	if err != nil {
		return err
	}
	stream := "location:" + exec.LocationID().String()
	if err := publishChat(ctx, exec, stream, event.TypeSay, payload); err != nil {
		return err
	}
	writeOutputf(ctx, exec, "say", "You say, %q\n", exec.Command().Message)
	return nil
}

// LocalHandler broadcasts exec.Command().Message to the wider local area
// (the location stream, same as say, but tagged TypeLocal so transports can
// render it as carrying further than a room-only say).
func LocalHandler(ctx context.Context, exec *command.CommandExecution) error {
	payload, err := chatPayload("message", exec.Command().Message)
	if err != nil {
		return err
	}
	stream := "location:" + exec.LocationID().String()
	if err := publishChat(ctx, exec, stream, event.TypeLocal, payload); err != nil {
		return err
	}
	writeOutputf(ctx, exec, "local", "You say locally, %q\n", exec.Command().Message)
	return nil
}

// GlobalHandler broadcasts exec.Command().Message to every connected player.
func GlobalHandler(ctx context.Context, exec *command.CommandExecution) error {
	payload, err := chatPayload("message", exec.Command().Message)
	if err != nil {
		return err
	}
	if err := publishChat(ctx, exec, "global", event.TypeGlobal, payload); err != nil {
		return err
	}
	writeOutputf(ctx, exec, "global", "[Global] You say, %q\n", exec.Command().Message)
	return nil
}

// EmoteHandler broadcasts exec.Command().Message to the character's room as
// a third-person action (e.g. "waves").
func EmoteHandler(ctx context.Context, exec *command.CommandExecution) error {
	payload, err := chatPayload("action", exec.Command().Message)
	if err != nil {
		return err
	}
	stream := "location:" + exec.LocationID().String()
	if err := publishChat(ctx, exec, stream, event.TypeEmote, payload); err != nil {
		return err
	}
	writeOutputf(ctx, exec, "emote", "%s %s\n", exec.CharacterName(), exec.Command().Message)
	return nil
}

// PoseHandler broadcasts exec.Command().Message as a freeform pose action.
func PoseHandler(ctx context.Context, exec *command.CommandExecution) error {
	payload, err := chatPayload("action", exec.Command().Message)
	if err != nil {
		return err
	}
	stream := "location:" + exec.LocationID().String()
	if err := publishChat(ctx, exec, stream, event.TypePose, payload); err != nil {
		return err
	}
	writeOutputf(ctx, exec, "pose", "%s %s\n", exec.CharacterName(), exec.Command().Message)
	return nil
}

// WhisperHandler sends exec.Command().Message privately to exec.Command().Target.
func WhisperHandler(ctx context.Context, exec *command.CommandExecution) error {
	return sendDirectMessage(ctx, exec, "whisper", event.TypeWhisper)
}

// ReplyHandler sends exec.Command().Message privately to the last player who
// whispered this character. Resolution of "last whisperer" lives with the
// session collaborator; until that lookup exists, reply requires an explicit
// target the same as whisper, exercising the same direct-message path.
func ReplyHandler(ctx context.Context, exec *command.CommandExecution) error {
	return sendDirectMessage(ctx, exec, "reply", event.TypeWhisper)
}

func sendDirectMessage(ctx context.Context, exec *command.CommandExecution, cmdName string, typ event.Type) error {
	world := exec.Services().World()
	subjectID := "char:" + exec.CharacterID().String()

	targetID, err := world.FindCharacterByName(ctx, subjectID, exec.Command().Target)
	if err != nil {
		return command.ErrTargetNotFound(exec.Command().Target) //nolint:wrapcheck // structured oops error
	}

	payload, err := chatPayload("message", exec.Command().Message)
	if err != nil {
		return err
	}
	stream := "player:" + targetID.String()
	if err := publishChat(ctx, exec, stream, typ, payload); err != nil {
		return err
	}
	writeOutputf(ctx, exec, cmdName, "You whisper to %s, %q\n", exec.Command().Target, exec.Command().Message)
	return nil
}
