// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package ws

import (
	"encoding/json"
	"strings"

	"github.com/mythosmud/mythosmud/internal/event"
)

// Frame is the outbound wire shape for an Event: {event_type, data,
// timestamp, sequence, player_id?, room_id?} per spec §6/§8. sequence is
// the event's ULID, which is already monotonic within a process, so no
// separate counter is needed.
type Frame struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Sequence  string          `json:"sequence"`
	PlayerID  string          `json:"player_id,omitempty"`
	RoomID    string          `json:"room_id,omitempty"`
}

// frameFromEvent converts an internal Event envelope to its wire Frame. The
// room_id field is populated only for room-shaped streams ("room:..." or
// "location:..."); player_id is populated only for player-shaped streams
// ("player:..."). Neither is set for any other stream.
func frameFromEvent(ev event.Event) Frame {
	f := Frame{
		EventType: string(ev.Type),
		Data:      json.RawMessage(ev.Payload),
		Timestamp: ev.Timestamp.UnixMilli(),
		Sequence:  ev.ID.String(),
	}
	switch {
	case strings.HasPrefix(ev.Stream, "room:"):
		f.RoomID = strings.TrimPrefix(ev.Stream, "room:")
	case strings.HasPrefix(ev.Stream, "location:"):
		f.RoomID = strings.TrimPrefix(ev.Stream, "location:")
	case strings.HasPrefix(ev.Stream, "player:"):
		f.PlayerID = strings.TrimPrefix(ev.Stream, "player:")
	}
	return f
}
