// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package command

import "github.com/oklog/ulid/v2"

// resolveExact reports whether firstWord is a registered command name, in
// which case alias resolution should leave it unchanged.
func (c *AliasCache) resolveExact(firstWord string, registry *Registry) (string, bool) {
	if firstWord == "" || registry == nil {
		return "", false
	}
	if _, ok := registry.Get(firstWord); ok {
		return firstWord, true
	}
	return "", false
}

// resolvePlayerAlias looks up firstWord in playerID's own aliases, ignoring
// system aliases and recursive expansion.
func (c *AliasCache) resolvePlayerAlias(playerID ulid.ULID, firstWord string) (aliasLookupResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if aliases, ok := c.playerAliases[playerID]; ok {
		if cmd, ok := aliases[firstWord]; ok {
			return aliasLookupResult{resolvedCmd: cmd, expanded: true, aliasUsed: firstWord}, true
		}
	}
	return aliasLookupResult{}, false
}

// resolveSystemAlias looks up firstWord in the system aliases, ignoring
// player aliases and recursive expansion.
func (c *AliasCache) resolveSystemAlias(firstWord string) (aliasLookupResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cmd, ok := c.systemAliases[firstWord]; ok {
		return aliasLookupResult{resolvedCmd: cmd, expanded: true, aliasUsed: firstWord}, true
	}
	return aliasLookupResult{}, false
}

// resolvePrefix checks word for a single-character prefix alias (player
// aliases checked before system ones), splitting it into the matched prefix
// and the remaining text. A word of fewer than two characters can't carry a
// prefix plus content, so it never matches.
func (c *AliasCache) resolvePrefix(playerID ulid.ULID, word string) (aliasLookupResult, bool) {
	if len(word) < 2 {
		return aliasLookupResult{}, false
	}
	prefix := word[:1]
	rest := word[1:]

	c.mu.RLock()
	defer c.mu.RUnlock()

	if aliases, ok := c.playerAliases[playerID]; ok {
		if cmd, ok := aliases[prefix]; ok {
			return aliasLookupResult{resolvedCmd: cmd, expanded: true, aliasUsed: prefix, isPrefix: true, rest: rest}, true
		}
	}
	if cmd, ok := c.systemAliases[prefix]; ok {
		return aliasLookupResult{resolvedCmd: cmd, expanded: true, aliasUsed: prefix, isPrefix: true, rest: rest}, true
	}
	return aliasLookupResult{}, false
}

// resolveAlias fully expands firstWord through the recursive alias chain
// (player aliases override system ones at every level), bounded by
// MaxExpansionDepth.
func (c *AliasCache) resolveAlias(playerID ulid.ULID, firstWord string) (aliasLookupResult, bool) {
	c.mu.RLock()
	resolved, expanded := c.resolveWithDepth(playerID, firstWord, 0)
	c.mu.RUnlock()

	if !expanded {
		return aliasLookupResult{}, false
	}
	return aliasLookupResult{resolvedCmd: resolved, expanded: true, aliasUsed: firstWord}, true
}
