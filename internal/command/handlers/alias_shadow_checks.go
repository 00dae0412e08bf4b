// Copyright 2026 MythosMUD Contributors

package handlers

import "github.com/mythosmud/mythosmud/internal/command"

func checkCommandShadows(cache *command.AliasCache, registry *command.Registry, alias string) bool {
	return cache.ShadowsCommand(alias, registry)
}

func checkSystemAliasShadows(cache *command.AliasCache, alias string) (string, bool) {
	return cache.ShadowsSystemAlias(alias)
}
