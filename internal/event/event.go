// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package event defines the envelope the game core uses to describe
// something that happened, and the bus that fans an envelope out to the
// sessions subscribed to hear about it.
package event

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Type identifies the kind of event.
type Type string

const (
	TypeSay             Type = "say"
	TypeLocal           Type = "local"
	TypeGlobal          Type = "global"
	TypeWhisper         Type = "whisper"
	TypeEmote           Type = "emote"
	TypePose            Type = "pose"
	TypeArrive          Type = "arrive"
	TypeLeave           Type = "leave"
	TypeSystem          Type = "system"
	TypeGameTick        Type = "game_tick"
	TypeCombatRound     Type = "combat_round"
	TypeCastingComplete Type = "casting_complete"
	TypeDeath           Type = "death"
	TypeContainerDecay  Type = "container_decayed"
	// TypeDisconnect tells a character's transport to close the connection,
	// e.g. when a rest countdown completes uninterrupted.
	TypeDisconnect Type = "disconnect"
)

// ActorKind identifies what type of entity caused an event.
type ActorKind uint8

const (
	ActorCharacter ActorKind = iota
	ActorSystem
	ActorPlugin
)

func (a ActorKind) String() string {
	switch a {
	case ActorCharacter:
		return "character"
	case ActorSystem:
		return "system"
	case ActorPlugin:
		return "plugin"
	default:
		return "unknown"
	}
}

// Actor represents who or what caused an event.
type Actor struct {
	Kind ActorKind
	ID   string // Character ID, plugin name, or "system"
}

// Event is the immutable envelope distributed by Bus. Its ID is a
// monotonic ULID, so two events built back to back from the same process
// sort in build order even with equal millisecond timestamps — the
// mechanism the ordering guarantee on a (sender, recipient) pair relies on.
type Event struct {
	ID        ulid.ULID
	Stream    string // e.g., "room:01ABC", "player:01XYZ", "global"
	Type      Type
	Timestamp time.Time
	Actor     Actor
	Payload   []byte // JSON
}
