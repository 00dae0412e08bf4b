// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package command

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mythosmud/mythosmud/internal/access"
	"github.com/mythosmud/mythosmud/internal/access/policy"
	"github.com/mythosmud/mythosmud/internal/access/policy/types"
	"github.com/mythosmud/mythosmud/internal/audit"
)

var tracer = otel.Tracer("mythosmud/command")

// Dispatcher handles command parsing, capability checks, and execution.
type Dispatcher struct {
	registry         *Registry
	engine           policy.AccessPolicyEngine
	aliasCache       *AliasCache          // optional, can be nil
	rateLimiter      *RateLimitMiddleware // optional, can be nil
	maxCommandLength int                  // 0 means DefaultMaxCommandLength
	auditSink        audit.Sink           // optional, can be nil
}

// WithAuditSink configures the dispatcher to emit a spec §4.5 audit record
// to sink for every security-sensitive command, success or failure. If not
// provided, no audit trail is recorded.
func WithAuditSink(sink audit.Sink) DispatcherOption {
	return func(d *Dispatcher) {
		d.auditSink = sink
	}
}

// WithMaxCommandLength configures the hard cap the normalizer (C1) applies
// before anything else runs, per the configuration collaborator (spec §6).
func WithMaxCommandLength(max int) DispatcherOption {
	return func(d *Dispatcher) {
		d.maxCommandLength = max
	}
}

// DispatcherOption configures a Dispatcher during construction.
type DispatcherOption func(*Dispatcher)

// WithAliasCache configures the dispatcher to use the given alias cache for
// command resolution. If not provided, alias resolution is disabled.
func WithAliasCache(cache *AliasCache) DispatcherOption {
	return func(d *Dispatcher) {
		d.aliasCache = cache
	}
}

// WithRateLimiter configures the dispatcher to use rate limiting.
// If not provided, rate limiting is disabled.
// Note: This function panics if NewRateLimitMiddleware returns an error.
// This can happen if either rl is nil (guarded above) or d.engine is nil
// (callers must set engine via NewDispatcher before applying options).
func WithRateLimiter(rl *RateLimiter) DispatcherOption {
	return func(d *Dispatcher) {
		if rl != nil {
			middleware, err := NewRateLimitMiddleware(rl, d.engine)
			if err != nil {
				panic(err)
			}
			d.rateLimiter = middleware
		}
	}
}

// NewDispatcher creates a new command dispatcher with the given registry
// and policy engine. Returns an error if registry or engine is nil.
func NewDispatcher(registry *Registry, engine policy.AccessPolicyEngine, opts ...DispatcherOption) (*Dispatcher, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if engine == nil {
		return nil, ErrNilEngine
	}
	d := &Dispatcher{
		registry: registry,
		engine:   engine,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch parses and executes a command.
func (d *Dispatcher) Dispatch(ctx context.Context, input string, exec *CommandExecution) (err error) {
	metrics := NewMetricsRecorder()
	defer metrics.Record()

	// Validate execution context - commands require a character
	if exec.CharacterID().Compare(ulid.ULID{}) == 0 {
		return ErrNoCharacter()
	}

	// Validate Services is non-nil to prevent handler panics
	if exec.Services() == nil {
		return ErrNilServices()
	}

	maxLen := d.maxCommandLength
	if maxLen <= 0 {
		maxLen = DefaultMaxCommandLength
	}

	// C1: normalize before anything else touches the raw input.
	normalized, err := Normalize(input, maxLen)
	if err != nil {
		return err
	}

	// Parse original input to capture the invoked command name before alias resolution
	originalParsed, err := Parse(normalized)
	if err != nil {
		return err
	}
	invokedAs := originalParsed.Name

	// Resolve aliases if cache is configured
	resolvedInput := normalized
	aliasResult := NoAliasResult(normalized)
	if d.aliasCache != nil {
		aliasResult = d.aliasCache.Resolve(exec.PlayerID(), normalized, d.registry)
		resolvedInput = aliasResult.Resolved
		// If an alias was used, set InvokedAs to the actual alias (not the parsed word)
		if aliasResult.WasAlias && aliasResult.AliasUsed != "" {
			invokedAs = aliasResult.AliasUsed
			// Record alias expansion metric
			RecordAliasExpansion(aliasResult.AliasUsed)
		}
	}

	// Alias expansion can reintroduce raw text (e.g. a stored alias body), so
	// re-run the normalizer on re-entry before parsing it.
	if aliasResult.WasAlias {
		resolvedInput, err = Normalize(resolvedInput, maxLen)
		if err != nil {
			return err
		}
	}

	// Parse resolved input
	parsed, err := Parse(resolvedInput)
	if err != nil {
		return err
	}

	// Expand single-letter shorthands (l/w/g) before the registry lookup,
	// per the parser's short-alias resolution step.
	if _, registered := d.registry.Get(parsed.Name); !registered {
		parsed.Name = resolveShortAlias(parsed.Name)
	}

	// C2: screen free text variants (say, whisper, mute, ...) before the
	// handler ever sees the input.
	screenedCommand, screenErr := screenCommand(parsed.Name, parsed.Args)
	if screenErr != nil {
		metrics.SetStatus(StatusInjectionBlocked)
		return screenErr
	}
	exec.command = screenedCommand

	// Set command name for metrics (now we know it)
	metrics.SetCommandName(parsed.Name)

	// Start trace span
	ctx, span := tracer.Start(ctx, "command.execute",
		trace.WithAttributes(
			attribute.String("command.name", parsed.Name),
			attribute.String("character.id", exec.CharacterID().String()),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	// Add alias attribute to span if alias was expanded
	if aliasResult.WasAlias {
		span.SetAttributes(attribute.Bool("command.alias_expanded", true))
		span.SetAttributes(attribute.String("command.original_input", input))
		span.SetAttributes(attribute.String("command.alias_used", aliasResult.AliasUsed))
	}

	// Apply rate limiting if configured (after alias resolution, before capability check)
	subject := access.SubjectCharacter + exec.CharacterID().String()
	if d.rateLimiter != nil {
		if rateErr := d.rateLimiter.Enforce(ctx, exec, parsed.Name, span); rateErr != nil {
			metrics.SetStatus(StatusRateLimited)
			return rateErr
		}
	}

	// Look up command
	entry, ok := d.registry.Get(parsed.Name)
	if !ok {
		metrics.SetStatus(StatusNotFound)
		err = ErrUnknownCommand(parsed.Name)
		return err
	}

	// Set source for metrics (now we know it)
	metrics.SetCommandSource(entry.Source)
	span.SetAttributes(attribute.String("command.source", entry.Source))

	// Any command besides rest itself interrupts an in-flight rest countdown.
	if parsed.Name != "rest" {
		if countdowns := exec.Services().Countdowns(); countdowns != nil {
			countdowns.CancelRestCountdown(exec.CharacterID())
		}
	}

	// Check capabilities using getter to ensure defensive copy
	for _, cap := range entry.GetCapabilities() {
		decision, evalErr := d.engine.Evaluate(ctx, types.AccessRequest{
			Subject:  subject,
			Action:   "execute",
			Resource: cap,
		})
		if evalErr != nil {
			slog.ErrorContext(ctx, "access evaluation failed",
				"subject", subject,
				"action", "execute",
				"resource", cap,
				"error", evalErr,
			)
		}
		if evalErr != nil || !decision.IsAllowed() {
			metrics.SetStatus(StatusPermissionDenied)
			err = ErrPermissionDenied(parsed.Name, cap)
			return err
		}
	}

	// Execute
	exec.Args = parsed.Args
	exec.InvokedAs = invokedAs
	err = entry.Handler()(ctx, exec)
	if err != nil {
		metrics.SetStatus(StatusError)
		slog.WarnContext(ctx, "command execution failed",
			"command", parsed.Name,
			"character_id", exec.CharacterID().String(),
			"error", err,
		)
	} else {
		metrics.SetStatus(StatusSuccess)
	}

	d.emitAudit(ctx, entry, parsed.Name, exec, err)
	return err
}

// emitAudit writes a spec §4.5 audit record for security-sensitive
// variants (mute/unmute, admin grants, teleport/goto, any admin.*-gated
// command). A no-op if no sink is configured or the command isn't
// sensitive; failures are logged, never propagated to the caller — an
// audit write must never turn a successful command into a failed one.
func (d *Dispatcher) emitAudit(ctx context.Context, entry CommandEntry, name string, exec *CommandExecution, cmdErr error) {
	if d.auditSink == nil || !audit.IsSensitive(name, entry.GetCapabilities()) {
		return
	}

	summary := "ok"
	if cmdErr != nil {
		summary = cmdErr.Error()
	}

	rec := audit.Record{
		Timestamp:     time.Now(),
		PlayerID:      exec.CharacterID().String(),
		Command:       name + " " + strings.Join(exec.Args, " "),
		Success:       cmdErr == nil,
		ResultSummary: summary,
		SessionID:     exec.SessionID().String(),
	}
	if err := d.auditSink.Write(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to write audit record", "command", name, "error", err)
	}
}
