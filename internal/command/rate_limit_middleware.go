// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package command

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mythosmud/mythosmud/internal/access"
	"github.com/mythosmud/mythosmud/internal/access/policy"
	"github.com/mythosmud/mythosmud/internal/access/policy/types"
)

// RateLimitMiddleware enforces per-session rate limiting, deferring to the
// access policy engine for a bypass capability before consulting the limiter.
type RateLimitMiddleware struct {
	limiter *RateLimiter
	engine  policy.AccessPolicyEngine
}

// NewRateLimitMiddleware creates a rate limiting middleware. Both limiter
// and engine are required; a nil limiter or engine is a construction error
// rather than a silently permissive middleware.
func NewRateLimitMiddleware(limiter *RateLimiter, engine policy.AccessPolicyEngine) (*RateLimitMiddleware, error) {
	if limiter == nil {
		return nil, ErrNilRateLimiter
	}
	if engine == nil {
		return nil, ErrNilEngine
	}
	return &RateLimitMiddleware{
		limiter: limiter,
		engine:  engine,
	}, nil
}

// Enforce checks and enforces rate limits for the provided execution context.
// A bypass-capability grant from the policy engine skips the limiter check
// entirely.
func (r *RateLimitMiddleware) Enforce(ctx context.Context, exec *CommandExecution, commandName string, span trace.Span) error {
	if r == nil || r.limiter == nil {
		return nil
	}

	subject := access.SubjectCharacter + exec.CharacterID().String()
	decision, _ := r.engine.Evaluate(ctx, types.AccessRequest{
		Subject:  subject,
		Action:   "execute",
		Resource: CapabilityRateLimitBypass,
	})
	if decision.IsAllowed() {
		return nil
	}

	allowed, cooldownMs := r.limiter.Allow(exec.SessionID())
	if allowed {
		return nil
	}

	span.SetAttributes(attribute.Bool("command.rate_limited", true))
	span.SetAttributes(attribute.Int64("command.cooldown_ms", cooldownMs))
	RecordCommandRateLimited(commandName)
	return ErrRateLimited(cooldownMs)
}
