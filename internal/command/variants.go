// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package command

import (
	"strconv"
	"strings"
)

// shortAliases maps the single-letter shorthands spec'd for the chat
// commands onto their canonical names. These resolve before registry
// lookup, distinct from player/system aliases managed by AliasCache.
var shortAliases = map[string]string{
	"l": "local",
	"w": "whisper",
	"g": "global",
}

// resolveShortAlias returns the canonical command name for name, expanding
// single-letter shorthands. If name is not a recognized shorthand it is
// returned unchanged.
func resolveShortAlias(name string) string {
	if canonical, ok := shortAliases[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}

// CommandKind tags the variant a parsed Command carries, so handlers can
// switch on shape rather than re-parsing Args themselves.
type CommandKind string

// Command kinds corresponding to the free-text and targeted chat/admin
// variants screened by ParseVariant. Variants with no free-text payload
// (look, move, who, ...) are not represented here; their existing handlers
// read exec.Args directly.
const (
	KindSay         CommandKind = "say"
	KindLocal       CommandKind = "local"
	KindGlobal      CommandKind = "global"
	KindWhisper     CommandKind = "whisper"
	KindReply       CommandKind = "reply"
	KindEmote       CommandKind = "emote"
	KindPose        CommandKind = "pose"
	KindMute        CommandKind = "mute"
	KindUnmute      CommandKind = "unmute"
	KindMuteGlobal  CommandKind = "mute_global"
	KindUnmuteGlobal CommandKind = "unmute_global"
	KindAddAdmin    CommandKind = "add_admin"
	KindTeleport    CommandKind = "teleport"
	KindGoto        CommandKind = "goto"
)

// variantLimits holds the per-variant free-text length bound, per the
// injection screen (spec §4.2).
var variantLimits = map[CommandKind]int{
	KindSay:     500,
	KindLocal:   500,
	KindGlobal:  2000,
	KindWhisper: 2000,
	KindReply:   2000,
	KindEmote:   200,
	KindPose:    100,
}

// Command is the tagged, validated argument record produced by ParseVariant
// for command variants that carry player-supplied free text or a named
// target. Handlers for those variants consume this instead of re-parsing
// exec.Args.
type Command struct {
	Kind      CommandKind
	Message   string // free text payload: say/local/global/emote/pose/reply body
	Target    string // named recipient: whisper/mute/unmute/add_admin/teleport/goto
	Minutes   int    // mute/mute_global duration, 0 for unmute and permanent
}

// ParseVariant screens and structures args for the given command kind,
// running the C2 injection screen (ValidateFreeText/ValidatePlayerNameField/
// ValidateMuteDuration) before returning a typed Command. Returns
// ErrInjectionBlocked or ErrBadArguments (including for over-long text) on
// failure.
func ParseVariant(kind CommandKind, args string) (Command, error) {
	switch kind {
	case KindSay, KindLocal, KindGlobal, KindEmote, KindPose:
		if err := ValidateFreeText(string(kind), args, variantLimits[kind]); err != nil {
			return Command{}, err
		}
		return Command{Kind: kind, Message: args}, nil

	case KindWhisper, KindReply:
		target, message, err := parseTargetAndRest(string(kind), args)
		if err != nil {
			return Command{}, err
		}
		if err := ValidateFreeText(string(kind), message, variantLimits[kind]); err != nil {
			return Command{}, err
		}
		return Command{Kind: kind, Target: target, Message: message}, nil

	case KindMute, KindMuteGlobal:
		target, rest, err := parseTargetAndRest(string(kind), args)
		if err != nil {
			return Command{}, err
		}
		minutes := 0
		if rest != "" {
			minutes, err = parseMuteMinutes(rest)
			if err != nil {
				return Command{}, err
			}
		}
		if err := ValidatePlayerNameField("target", target); err != nil {
			return Command{}, err
		}
		return Command{Kind: kind, Target: target, Minutes: minutes}, nil

	case KindUnmute, KindUnmuteGlobal, KindAddAdmin:
		target := strings.TrimSpace(args)
		if err := ValidatePlayerNameField("target", target); err != nil {
			return Command{}, err
		}
		return Command{Kind: kind, Target: target}, nil

	case KindTeleport, KindGoto:
		target := strings.TrimSpace(args)
		if err := ValidateFreeText(string(kind), target, 200); err != nil {
			return Command{}, err
		}
		return Command{Kind: kind, Target: target}, nil

	default:
		return Command{}, ErrBadArguments("command", "unrecognized variant")
	}
}

// parseMuteMinutes parses and validates a mute duration in minutes.
func parseMuteMinutes(s string) (int, error) {
	minutes, convErr := strconv.Atoi(strings.TrimSpace(s))
	if convErr != nil {
		return 0, ErrBadArguments("duration", "must be a whole number of minutes")
	}
	if err := ValidateMuteDuration(minutes); err != nil {
		return 0, err
	}
	return minutes, nil
}

// screenCommand runs the C2 injection screen for name/args, returning the
// parsed Command for variants that carry one. Variants with no registered
// CommandKind (look, move, who, ...) pass through untouched; their handlers
// validate via exec.Args as before (e.g. ValidateDirection for move).
func screenCommand(name, args string) (Command, error) {
	kind, ok := kindForCommandName(name)
	if !ok {
		return Command{}, nil
	}
	return ParseVariant(kind, args)
}

// kindForCommandName maps a canonical command name onto its CommandKind, if
// it is one of the free-text/targeted variants ParseVariant screens.
func kindForCommandName(name string) (CommandKind, bool) {
	switch strings.ToLower(name) {
	case "say":
		return KindSay, true
	case "local":
		return KindLocal, true
	case "global":
		return KindGlobal, true
	case "whisper":
		return KindWhisper, true
	case "reply":
		return KindReply, true
	case "emote", "me":
		return KindEmote, true
	case "pose":
		return KindPose, true
	case "mute":
		return KindMute, true
	case "unmute":
		return KindUnmute, true
	case "mute_global":
		return KindMuteGlobal, true
	case "unmute_global":
		return KindUnmuteGlobal, true
	case "add_admin":
		return KindAddAdmin, true
	case "teleport":
		return KindTeleport, true
	case "goto":
		return KindGoto, true
	default:
		return "", false
	}
}
