// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package testutil

import (
	"fmt"
	"testing"

	"github.com/oklog/ulid/v2"

	"github.com/mythosmud/mythosmud/internal/command"
	"github.com/mythosmud/mythosmud/internal/domain"
)

// PlayerContext captures common player identity fields.
type PlayerContext struct {
	CharacterID ulid.ULID
	PlayerID    ulid.ULID
	Name        string
}

// NewPlayer creates a basic player context with a name.
func NewPlayer(name string) PlayerContext {
	return PlayerContext{
		CharacterID: ulid.Make(),
		PlayerID:    ulid.Make(),
		Name:        name,
	}
}

// AdminPlayer returns a default admin player context.
func AdminPlayer() PlayerContext {
	return NewPlayer("Admin")
}

// RegularPlayer returns a default non-admin player context.
func RegularPlayer() PlayerContext {
	return NewPlayer("Player")
}

// roomSeq and NewRoomID give tests distinct, pattern-valid room IDs without
// coordinating literal strings across test cases.
var roomSeq int

// NewRoomID returns a fresh, valid RoomId for use in tests.
func NewRoomID() domain.RoomId {
	roomSeq++
	id, err := domain.NewRoomId(fmt.Sprintf("test_room_n%d", roomSeq))
	if err != nil {
		panic(err)
	}
	return id
}

// NewRoom creates a RoomView with a name and description, plus the id it was
// registered under.
func NewRoom(name, description string) (domain.RoomId, command.RoomView) {
	return NewRoomID(), command.RoomView{Name: name, Description: description}
}

// ExitContext bundles two rooms and a connecting exit for move tests.
type ExitContext struct {
	FromID domain.RoomId
	From   command.RoomView
	ToID   domain.RoomId
	To     command.RoomView
	Exit   command.ExitView
}

// NewExitContext creates an exit and matching rooms for move tests.
func NewExitContext(_ *testing.T, direction string, aliases ...string) ExitContext {
	fromID, from := NewRoom("From Room", "")
	toID, to := NewRoom("To Room", "")

	return ExitContext{
		FromID: fromID,
		From:   from,
		ToID:   toID,
		To:     to,
		Exit: command.ExitView{
			Direction: direction,
			ToRoomID:  toID,
			Aliases:   aliases,
		},
	}
}
