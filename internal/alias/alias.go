// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package alias provides persistent, per-player command aliases: file-backed
// storage (Store) and circular-reference detection over the alias
// dependency graph (Graph).
package alias

import (
	"regexp"
	"strings"
	"time"
)

// MaxAliasesPerPlayer caps how many aliases a single player may store.
const MaxAliasesPerPlayer = 50

// MaxNameLength is the maximum length of an alias name.
const MaxNameLength = 20

// MaxCommandLength is the maximum length of an alias's expansion command.
const MaxCommandLength = 200

// reservedNames cannot be used as alias names; they shadow built-in commands.
var reservedNames = map[string]bool{
	"alias":   true,
	"aliases": true,
	"unalias": true,
	"help":    true,
}

// namePattern matches a valid alias name: starts with a letter, followed by
// letters, digits, or underscores.
var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Alias is a single named command shortcut belonging to a player.
type Alias struct {
	Name      string    `json:"name"`
	Command   string    `json:"command"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AliasBundle is the on-disk representation of one player's alias set.
type AliasBundle struct {
	Version string  `json:"version"`
	Aliases []Alias `json:"aliases"`
}

// ValidateName reports whether name is a legal alias name: non-empty, within
// MaxNameLength, not a reserved command word, and matching namePattern.
func ValidateName(name string) bool {
	if name == "" || len(name) > MaxNameLength {
		return false
	}
	if reservedNames[strings.ToLower(name)] {
		return false
	}
	return namePattern.MatchString(name)
}

// ValidateCommand reports whether command is a legal alias expansion:
// non-empty, within MaxCommandLength, and not itself a reserved command word.
func ValidateCommand(command string) bool {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" || len(command) > MaxCommandLength {
		return false
	}
	firstWord := strings.ToLower(strings.Fields(trimmed)[0])
	return !reservedNames[firstWord]
}
