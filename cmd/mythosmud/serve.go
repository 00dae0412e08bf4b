// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mythosmud/mythosmud/internal/auth"
	"github.com/mythosmud/mythosmud/internal/config"
	"github.com/mythosmud/mythosmud/internal/orchestrator"
	"github.com/mythosmud/mythosmud/internal/session/redispresence"
)

const (
	defaultAddr          = ":8765"
	shutdownGraceTimeout = 5 * time.Second
	authSecretEnv        = "MYTHOSMUD_AUTH_SECRET"
	redisURLEnv          = "MYTHOSMUD_REDIS_URL"
)

// serveConfig holds the flags for the serve subcommand.
type serveConfig struct {
	addr      string
	adminChar string
}

// Validate checks that the configuration is usable.
func (cfg *serveConfig) Validate() error {
	if cfg.addr == "" {
		return fmt.Errorf("addr is required")
	}
	return nil
}

// NewServeCmd creates the serve subcommand, which runs the game server
// until it receives SIGINT/SIGTERM or a "shutdown" command is dispatched by
// an admin character.
func NewServeCmd() *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.addr, "addr", defaultAddr, "WebSocket listen address")
	cmd.Flags().StringVar(&cfg.adminChar, "admin", "", "character ID (ULID) to grant every admin capability at startup")

	return cmd
}

func runServe(ctx context.Context, cfg *serveConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := setupLogging(logFormat); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	gameCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	deps := orchestrator.Deps{
		AdminCharacterID: cfg.adminChar,
	}
	if secret := os.Getenv(authSecretEnv); secret != "" {
		deps.Verifier = auth.NewHMACVerifier([]byte(secret))
	} else {
		slog.Warn(authSecretEnv + " is not set; no connections will be able to authenticate")
	}

	if redisURL := os.Getenv(redisURLEnv); redisURL != "" {
		opts, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return fmt.Errorf("invalid %s: %w", redisURLEnv, parseErr)
		}
		deps.PresenceMirror = redispresence.New(redis.NewClient(opts))
		slog.Info("durable session-presence mirror enabled", "redis_addr", opts.Addr)
	}

	srv, err := orchestrator.New(gameCfg, cfg.addr, deps)
	if err != nil {
		return fmt.Errorf("failed to construct server: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		<-sigCh
		slog.Info("signal received, shutting down", "grace", shutdownGraceTimeout)
		cancel()
	}()

	slog.Info("mythosmud serve starting", "addr", cfg.addr)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func setupLogging(format string) error {
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	case "text":
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		return fmt.Errorf("invalid log format %q: must be 'json' or 'text'", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
