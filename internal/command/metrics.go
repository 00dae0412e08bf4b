// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package command

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Status constants for command execution metrics.
const (
	StatusSuccess          = "success"
	StatusError            = "error"
	StatusNotFound         = "not_found"
	StatusPermissionDenied = "permission_denied"
	StatusRateLimited      = "rate_limited"
	StatusInjectionBlocked = "injection_blocked"
)

// Package-level metric instruments, initialized lazily via InitMetrics or on first use.
var (
	commandExecutions metric.Int64Counter
	commandDuration   metric.Float64Histogram
	aliasExpansions   metric.Int64Counter
	outputFailures    metric.Int64Counter
	rateLimited       metric.Int64Counter
)

// InitMetrics initializes the command metrics using the provided meter provider.
// This should be called at startup with the configured meter provider.
// If not called, metrics will be recorded to the global NoOp meter.
func InitMetrics(provider metric.MeterProvider) {
	meter := provider.Meter("mythosmud/command")
	initMetricsWithMeter(meter)
}

// initMetricsWithMeter initializes metrics with a specific meter instance.
// Any errors during metric creation are logged but not fatal - the global
// meter will provide NoOp implementations that safely do nothing.
func initMetricsWithMeter(meter metric.Meter) {
	// Note: OTel meter methods only return errors for invalid names/configurations.
	// With valid constant names and options, errors are extremely unlikely.
	// We ignore errors here since the returned instruments are safe to use
	// even when an error occurs (they become NoOp implementations).
	commandExecutions, _ = meter.Int64Counter( //nolint:errcheck // NoOp fallback is safe
		"mythosmud.command.executions",
		metric.WithDescription("Number of command executions"),
		metric.WithUnit("{execution}"),
	)

	commandDuration, _ = meter.Float64Histogram( //nolint:errcheck // NoOp fallback is safe
		"mythosmud.command.duration",
		metric.WithDescription("Command execution duration"),
		metric.WithUnit("s"),
	)

	aliasExpansions, _ = meter.Int64Counter( //nolint:errcheck // NoOp fallback is safe
		"mythosmud.alias.expansions",
		metric.WithDescription("Number of alias expansions"),
		metric.WithUnit("{expansion}"),
	)

	outputFailures, _ = meter.Int64Counter( //nolint:errcheck // NoOp fallback is safe
		"mythosmud.command.output_failures",
		metric.WithDescription("Number of failures writing command output to a connection"),
		metric.WithUnit("{failure}"),
	)

	rateLimited, _ = meter.Int64Counter( //nolint:errcheck // NoOp fallback is safe
		"mythosmud.command.rate_limited",
		metric.WithDescription("Number of commands rejected by the rate limiter"),
		metric.WithUnit("{command}"),
	)
}

// ensureMetricsInitialized initializes metrics using the global meter if not already done.
func ensureMetricsInitialized() {
	if commandExecutions == nil {
		initMetricsWithMeter(otel.Meter("mythosmud/command"))
	}
}

// RecordCommandExecution increments the command execution counter with the given attributes.
// Parameters:
//   - command: the command name that was executed
//   - source: where the command is defined (e.g., "core", "lua")
//   - status: execution result (use Status* constants)
func RecordCommandExecution(command, source, status string) {
	ensureMetricsInitialized()
	commandExecutions.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("command", command),
			attribute.String("source", source),
			attribute.String("status", status),
		),
	)
}

// RecordCommandDuration records the duration of a command execution.
// Parameters:
//   - command: the command name that was executed
//   - source: where the command is defined (e.g., "core", "lua")
//   - duration: how long the command took to execute
func RecordCommandDuration(command, source string, duration time.Duration) {
	ensureMetricsInitialized()
	commandDuration.Record(context.Background(), duration.Seconds(),
		metric.WithAttributes(
			attribute.String("command", command),
			attribute.String("source", source),
		),
	)
}

// RecordAliasExpansion increments the alias expansion counter.
// Parameters:
//   - alias: the alias that was expanded
func RecordAliasExpansion(alias string) {
	ensureMetricsInitialized()
	aliasExpansions.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("alias", alias),
		),
	)
}

// RecordCommandOutputFailure increments the counter for failures writing a
// command's output back to its connection (the connection is probably gone).
func RecordCommandOutputFailure(command string) {
	ensureMetricsInitialized()
	outputFailures.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("command", command),
		),
	)
}

// RecordCommandRateLimited increments the counter for commands rejected by
// the per-session rate limiter.
func RecordCommandRateLimited(command string) {
	ensureMetricsInitialized()
	rateLimited.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("command", command),
		),
	)
}
