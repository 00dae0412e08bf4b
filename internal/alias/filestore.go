// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package alias

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"
)

// Error codes returned by Store operations, surfaced via oops.Code.
const (
	CodeInvalidAliasName    = "INVALID_ALIAS_NAME"
	CodeInvalidAliasCommand = "INVALID_ALIAS_COMMAND"
	CodeAliasLimitReached   = "ALIAS_LIMIT_REACHED"
	CodeAliasNotFound       = "ALIAS_NOT_FOUND"
)

// bundleVersion is written to every persisted AliasBundle.
const bundleVersion = "1.0"

// Store persists per-player alias bundles as JSON files under a directory,
// one file per player named "{playerName}_aliases.json". It is safe for
// concurrent use: a single mutex serializes all file access, mirroring the
// map-keyed locking discipline used throughout this module's collaborators.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a Store rooted at dir, creating the directory if it does
// not already exist.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, oops.Wrapf(err, "create alias storage directory %q", dir)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) pathFor(playerName string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_aliases.json", playerName))
}

// load reads a player's alias bundle from disk. A missing file is not an
// error: it returns an empty bundle. A corrupt (unparsable) file is logged
// at error level and also treated as empty, so one damaged record doesn't
// take down a player's entire alias set.
func (s *Store) load(playerName string) (AliasBundle, error) {
	data, err := os.ReadFile(s.pathFor(playerName))
	if os.IsNotExist(err) {
		return AliasBundle{Version: bundleVersion, Aliases: []Alias{}}, nil
	}
	if err != nil {
		return AliasBundle{}, oops.Wrapf(err, "read alias file for %q", playerName)
	}

	var bundle AliasBundle
	if jsonErr := json.Unmarshal(data, &bundle); jsonErr != nil {
		// Corrupt record recovery: treat as empty rather than failing the
		// whole operation, so a single bad write doesn't lock a player out.
		slog.Error("corrupt alias file, treating as empty",
			"player", playerName, "error", jsonErr)
		return AliasBundle{Version: bundleVersion, Aliases: []Alias{}}, nil
	}
	if bundle.Aliases == nil {
		bundle.Aliases = []Alias{}
	}
	return bundle, nil
}

func (s *Store) save(playerName string, bundle AliasBundle) error {
	bundle.Version = bundleVersion
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return oops.Wrapf(err, "marshal alias bundle for %q", playerName)
	}
	if err := os.WriteFile(s.pathFor(playerName), data, 0o644); err != nil {
		return oops.Wrapf(err, "write alias file for %q", playerName)
	}
	return nil
}

// GetPlayerAliases returns all aliases stored for playerName, or an empty
// slice if the player has none.
func (s *Store) GetPlayerAliases(playerName string) ([]Alias, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bundle, err := s.load(playerName)
	if err != nil {
		return nil, err
	}
	return bundle.Aliases, nil
}

// GetAlias returns a single named alias for playerName, case-insensitively.
func (s *Store) GetAlias(playerName, aliasName string) (Alias, bool, error) {
	aliases, err := s.GetPlayerAliases(playerName)
	if err != nil {
		return Alias{}, false, err
	}
	for _, a := range aliases {
		if strings.EqualFold(a.Name, aliasName) {
			return a, true, nil
		}
	}
	return Alias{}, false, nil
}

// CreateAlias validates and persists a new (or updated) alias for playerName.
// Returns an oops error with CodeInvalidAliasName/CodeInvalidAliasCommand if
// the inputs fail validation, or CodeAliasLimitReached if the player already
// has MaxAliasesPerPlayer aliases and name does not match an existing one.
func (s *Store) CreateAlias(playerName, name, command string) (Alias, error) {
	if !ValidateName(name) {
		return Alias{}, oops.Code(CodeInvalidAliasName).
			With("name", name).
			Errorf("invalid alias name: %s", name)
	}
	if !ValidateCommand(command) {
		return Alias{}, oops.Code(CodeInvalidAliasCommand).
			With("command", command).
			Errorf("invalid alias command")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bundle, err := s.load(playerName)
	if err != nil {
		return Alias{}, err
	}

	now := time.Now().UTC()
	existingIdx := -1
	for i, a := range bundle.Aliases {
		if strings.EqualFold(a.Name, name) {
			existingIdx = i
			break
		}
	}

	if existingIdx == -1 && len(bundle.Aliases) >= MaxAliasesPerPlayer {
		return Alias{}, oops.Code(CodeAliasLimitReached).
			With("player", playerName).
			With("limit", MaxAliasesPerPlayer).
			Errorf("alias limit of %d reached", MaxAliasesPerPlayer)
	}

	created := now
	if existingIdx != -1 {
		created = bundle.Aliases[existingIdx].CreatedAt
	}
	entry := Alias{Name: name, Command: command, CreatedAt: created, UpdatedAt: now}

	if existingIdx != -1 {
		bundle.Aliases[existingIdx] = entry
	} else {
		bundle.Aliases = append(bundle.Aliases, entry)
	}

	if err := s.save(playerName, bundle); err != nil {
		return Alias{}, err
	}
	return entry, nil
}

// RemoveAlias deletes a named alias for playerName. Returns
// CodeAliasNotFound if no alias with that name exists.
func (s *Store) RemoveAlias(playerName, aliasName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bundle, err := s.load(playerName)
	if err != nil {
		return err
	}

	for i, a := range bundle.Aliases {
		if strings.EqualFold(a.Name, aliasName) {
			bundle.Aliases = append(bundle.Aliases[:i], bundle.Aliases[i+1:]...)
			return s.save(playerName, bundle)
		}
	}

	return oops.Code(CodeAliasNotFound).
		With("name", aliasName).
		Errorf("alias not found: %s", aliasName)
}

// ClearAliases removes every alias belonging to playerName.
func (s *Store) ClearAliases(playerName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(playerName, AliasBundle{Version: bundleVersion, Aliases: []Alias{}})
}

// CountAliases returns how many aliases playerName currently has stored.
func (s *Store) CountAliases(playerName string) (int, error) {
	aliases, err := s.GetPlayerAliases(playerName)
	if err != nil {
		return 0, err
	}
	return len(aliases), nil
}

// AsMap converts a slice of aliases into the name→command map shape that
// command.AliasCache.LoadPlayerAliases/LoadSystemAliases expects.
func AsMap(aliases []Alias) map[string]string {
	result := make(map[string]string, len(aliases))
	for _, a := range aliases {
		result[a.Name] = a.Command
	}
	return result
}
