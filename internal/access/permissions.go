// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package access

// Permission groups define reusable sets of permissions.
// Roles compose these groups rather than inheriting.

var playerPowers = []string{
	// Self access
	"read:character:$self",
	"write:character:$self",

	// Current location access
	"read:location:$here",
	"read:character:$here:*",
	"emit:stream:location:$here",

	// Commands every player may invoke
	"execute:command:look",
	"execute:command:go",
	"execute:command:say",
	"execute:command:local",
	"execute:command:whisper",
	"execute:command:reply",
	"execute:command:emote",
	"execute:command:pose",
	"execute:command:alias",
	"execute:command:aliases",
	"execute:command:unalias",
	"execute:command:help",
	"execute:command:who",
	"execute:command:status",
	"execute:command:inventory",
	"execute:command:quit",
}

var moderatorPowers = []string{
	// Moderation commands affecting other players
	"execute:command:mute",
	"execute:command:unmute",
	"execute:command:mute_global",
	"execute:command:unmute_global",
}

var adminPowers = []string{
	// Full access
	"read:**",
	"write:**",
	"emit:**",
	"execute:**",
	"grant:**",
}

// DefaultRoles returns the default role definitions.
// Roles compose permission groups explicitly (no inheritance).
func DefaultRoles() map[string][]string {
	return map[string][]string{
		"player":    playerPowers,
		"moderator": compose(playerPowers, moderatorPowers),
		"admin":     compose(playerPowers, moderatorPowers, adminPowers),
	}
}

// compose merges multiple permission slices into one.
func compose(groups ...[]string) []string {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	result := make([]string, 0, total)
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}
