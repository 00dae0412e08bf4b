// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package event

import "testing"

func TestType_String(t *testing.T) {
	tests := []struct {
		name     string
		input    Type
		expected string
	}{
		{"say event", TypeSay, "say"},
		{"pose event", TypePose, "pose"},
		{"arrive event", TypeArrive, "arrive"},
		{"leave event", TypeLeave, "leave"},
		{"system event", TypeSystem, "system"},
		{"game tick event", TypeGameTick, "game_tick"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(tt.input); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActorKind_String(t *testing.T) {
	tests := []struct {
		name     string
		input    ActorKind
		expected string
	}{
		{"character", ActorCharacter, "character"},
		{"system", ActorSystem, "system"},
		{"plugin", ActorPlugin, "plugin"},
		{"unknown", ActorKind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.String(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}
