// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var logFormat string

// NewRootCmd creates the root command for the MythosMUD CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mythosmud",
		Short: "MythosMUD - a real-time multi-user text adventure server",
		Long: `MythosMUD runs the session and game-loop core: command
dispatch, the tick scheduler, and the WebSocket transport players connect
through.`,
	}

	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json or text)")

	cmd.AddCommand(NewServeCmd())

	return cmd
}
