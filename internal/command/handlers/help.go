// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package handlers

import (
	"context"
	"sort"
	"strings"

	"github.com/mythosmud/mythosmud/internal/command"
)

// HelpHandler shows the registered command list, or one command's detailed
// help text when given an argument.
func HelpHandler(ctx context.Context, exec *command.CommandExecution) error {
	registry := exec.Services().Registry()
	if registry == nil {
		writeOutput(ctx, exec, "help", "Help is not available right now.")
		return nil
	}

	name := strings.TrimSpace(exec.Args)
	if name != "" {
		entry, ok := registry.Get(name)
		if !ok {
			writeOutputf(ctx, exec, "help", "No help available for '%s'.\n", name)
			return nil
		}
		if entry.HelpText != "" {
			writeOutput(ctx, exec, "help", entry.HelpText)
		} else {
			writeOutputf(ctx, exec, "help", "%s — %s\n", entry.Usage, entry.Help)
		}
		return nil
	}

	entries := registry.All()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	writeOutput(ctx, exec, "help", "Available commands:")
	for _, entry := range entries {
		writeOutputf(ctx, exec, "help", "  %-14s %s\n", entry.Name, entry.Help)
	}
	writeOutput(ctx, exec, "help", "Type 'help <command>' for details on a specific command.")
	return nil
}
