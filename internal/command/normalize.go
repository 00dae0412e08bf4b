// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package command

import (
	"regexp"
	"strings"
)

// DefaultMaxCommandLength is the hard cap on raw command input, in octets,
// applied before any other normalization step. Overridable per the
// configuration collaborator.
const DefaultMaxCommandLength = 1000

// ansiEscapePattern matches ANSI/VT100 escape sequences (CSI form).
var ansiEscapePattern = regexp.MustCompile("\x1b\\[[0-9;]*[a-zA-Z]")

// whitespaceRunPattern matches one or more whitespace characters, collapsed
// to a single space during normalization.
var whitespaceRunPattern = regexp.MustCompile(`\s+`)

// Normalize applies the command input normalizer (C1) to raw player input:
// reject anything over maxLength octets, strip an optional leading slash,
// strip ANSI escapes, drop control characters other than tab/newline/space,
// collapse whitespace runs, and trim. A maxLength of 0 or less falls back to
// DefaultMaxCommandLength. The only failure mode is the length cap; an input
// that normalizes away entirely returns an empty string, not an error.
func Normalize(raw string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxCommandLength
	}
	if len(raw) > maxLength {
		return "", ErrCommandTooLong(len(raw), maxLength)
	}

	text := raw
	if strings.HasPrefix(text, "/") {
		text = text[1:]
	}

	text = ansiEscapePattern.ReplaceAllString(text, "")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 0x20 && r != '\t' && r != '\n' && r != ' ' {
			continue
		}
		b.WriteRune(r)
	}
	text = b.String()

	text = whitespaceRunPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text), nil
}

// disallowedFreeTextChars are rejected outright in any free-text field
// (say/local/whisper/system/emote/me/pose messages), per the injection
// screen (C2 step 4).
const disallowedFreeTextChars = `<>&"';|` + "`" + `+$()`

// injectionPatterns catch shell, SQL, code-execution, and format-string
// abuse attempts that don't rely on any single disallowed character.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(and|or)\s*=\s*['"]?\w+`),
	regexp.MustCompile(`(?i)__import__\(`),
	regexp.MustCompile(`(?i)eval\(`),
	regexp.MustCompile(`(?i)exec\(`),
	regexp.MustCompile(`(?i)system\(`),
	regexp.MustCompile(`(?i)os\.`),
	regexp.MustCompile(`%[a-zA-Z]`),
}

// ValidateFreeText runs the injection screen (C2 step 4) over a free-text
// field value: length bound per variant, then the disallowed-character set,
// then the injection pattern list. field names the field in the returned
// error for a usable player-facing message.
func ValidateFreeText(field, value string, maxLen int) error {
	if len(value) > maxLen {
		return ErrBadArguments(field, "too long")
	}
	if idx := strings.IndexAny(value, disallowedFreeTextChars); idx != -1 {
		return ErrInjectionBlocked(string(value[idx]), "")
	}
	for _, pat := range injectionPatterns {
		if pat.MatchString(value) {
			return ErrInjectionBlocked("", pat.String())
		}
	}
	return nil
}

// playerNamePattern matches a legal player-name field: a letter followed by
// letters, digits, underscores, or hyphens, 1-50 characters total.
var playerNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,49}$`)

// ValidatePlayerNameField validates a player-name argument (target, mute
// subject, whisper recipient) per C2 step 4.
func ValidatePlayerNameField(field, value string) error {
	if !playerNamePattern.MatchString(value) {
		return ErrBadArguments(field, "must start with a letter and contain only letters, digits, underscores, or hyphens")
	}
	return nil
}

// ValidateDirection validates a movement direction argument.
func ValidateDirection(direction string) error {
	switch direction {
	case "north", "south", "east", "west", "up", "down":
		return nil
	default:
		return ErrBadArguments("direction", "must be one of north, south, east, west, up, down")
	}
}

// ValidateMuteDuration validates a mute duration in minutes (1-10080, i.e.
// up to one week).
func ValidateMuteDuration(minutes int) error {
	if minutes < 1 || minutes > 10080 {
		return ErrBadArguments("duration", "must be between 1 and 10080 minutes")
	}
	return nil
}
