// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package domain holds the identity types shared across every collaborator
// package: players, rooms, and the tick counter. None of these types carry
// behavior beyond validation; they exist so packages agree on a single
// representation instead of passing bare strings or ULIDs around.
package domain

import (
	"regexp"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// PlayerId identifies a player across sessions, events, and commands.
type PlayerId = ulid.ULID

// RoomIDPattern is the validation pattern for RoomId: a lowercase
// underscore-separated body followed by a "_room_" or "_intersection_"
// suffix, e.g. "arkham_northside_room_library" or
// "arkham_downtown_intersection_main_and_high".
var RoomIDPattern = regexp.MustCompile(`^[a-z0-9_]+_(room|intersection)_[a-z0-9_]+$`)

// maxRoomIDLength bounds RoomId so a malformed or adversarial value can't
// grow unbounded before validation rejects it.
const maxRoomIDLength = 256

// RoomId is a short textual identifier for a room, validated by
// RoomIDPattern. It is identity only; the content a room holds (name,
// description, exits) lives behind a room registry collaborator, not on
// this type.
type RoomId string

// NewRoomId validates s against RoomIDPattern and returns it as a RoomId.
func NewRoomId(s string) (RoomId, error) {
	if len(s) == 0 || len(s) > maxRoomIDLength {
		return "", oops.In("domain").Code("INVALID_ROOM_ID").
			With("length", len(s)).
			Errorf("room id length out of bounds")
	}
	if !RoomIDPattern.MatchString(s) {
		return "", oops.In("domain").Code("INVALID_ROOM_ID").
			With("value", s).
			Errorf("room id does not match required pattern")
	}
	return RoomId(s), nil
}

// String implements fmt.Stringer.
func (r RoomId) String() string { return string(r) }

// IsZero reports whether r is the empty RoomId.
func (r RoomId) IsZero() bool { return r == "" }

// Tick is a monotonically increasing counter owned by the tick scheduler.
type Tick int64
