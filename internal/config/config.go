// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package config holds the core's startup configuration: required and
// optional environment reads, plus the game-tunable values the spec leaves
// to a "configuration collaborator" (tick rate, max command length,
// rest-countdown duration, disconnect grace). It follows the same
// Validate()-method pattern the teacher's cmd/holomush subcommands use for
// their own cobra-flag configs; no config-file/env layering library is
// used — see DESIGN.md.
package config

import (
	"os"
	"time"

	"github.com/samber/oops"
)

const (
	// CodeInvalid marks a configuration value that failed validation.
	CodeInvalid = "CONFIG_INVALID"

	defaultTickRate              = time.Second
	defaultMaxCommandLength      = 1000
	defaultRestCountdownDuration = 10 * time.Second
	// defaultDisconnectGrace is spec Open Question 2's decision: 15s,
	// implementation-owned, not derived from the original source.
	defaultDisconnectGrace = 15 * time.Second
)

// GameConfig holds the tunables §6 calls "game config (tick rate, max
// command length, rest-countdown duration) supplied by the configuration
// collaborator."
type GameConfig struct {
	TickRate              time.Duration
	MaxCommandLength      int
	RestCountdownDuration time.Duration
}

// SessionConfig holds connection-manager tunables.
type SessionConfig struct {
	// DisconnectGrace is how long a session with zero live transports is
	// kept before EndSession runs, so a brief network blip doesn't drop a
	// reconnecting player's session. Spec Open Question 2.
	DisconnectGrace time.Duration
}

// Config is the core's complete startup configuration.
type Config struct {
	// AliasesDir is the alias storage directory (ALIASES_DIR). Required;
	// its absence is a fatal startup error per spec §6.
	AliasesDir string
	// ServerLog optionally overrides the rotating log file path
	// (SERVER_LOG). Empty means log to stdout/stderr only.
	ServerLog string

	Game    GameConfig
	Session SessionConfig
}

// Validate checks that the configuration is usable. A missing AliasesDir is
// the one condition spec §6/§7 calls out as a fatal startup error; the rest
// have defaults and can't be left invalid by Load.
func (cfg *Config) Validate() error {
	if cfg.AliasesDir == "" {
		return oops.Code(CodeInvalid).Errorf("ALIASES_DIR environment variable is required")
	}
	if cfg.Game.TickRate <= 0 {
		return oops.Code(CodeInvalid).Errorf("tick rate must be positive")
	}
	if cfg.Game.MaxCommandLength <= 0 {
		return oops.Code(CodeInvalid).Errorf("max command length must be positive")
	}
	if cfg.Game.RestCountdownDuration <= 0 {
		return oops.Code(CodeInvalid).Errorf("rest countdown duration must be positive")
	}
	if cfg.Session.DisconnectGrace < 0 {
		return oops.Code(CodeInvalid).Errorf("disconnect grace must not be negative")
	}
	return nil
}

// Load builds a Config from the environment, applying defaults for every
// game/session tunable before validating. ALIASES_DIR must already be set
// in the environment (including by a prior godotenv.Load() call in main);
// its absence surfaces as a CodeInvalid error that the caller should treat
// as a fatal startup condition.
func Load() (*Config, error) {
	cfg := &Config{
		AliasesDir: os.Getenv("ALIASES_DIR"),
		ServerLog:  os.Getenv("SERVER_LOG"),
		Game: GameConfig{
			TickRate:              defaultTickRate,
			MaxCommandLength:      defaultMaxCommandLength,
			RestCountdownDuration: defaultRestCountdownDuration,
		},
		Session: SessionConfig{
			DisconnectGrace: defaultDisconnectGrace,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
