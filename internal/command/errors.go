// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package command

import (
	"errors"

	"github.com/samber/oops"
)

// Error codes for command dispatch failures.
const (
	CodeUnknownCommand     = "UNKNOWN_COMMAND"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeInvalidArgs        = "INVALID_ARGS"
	CodeWorldError         = "WORLD_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeCircularAlias      = "CIRCULAR_ALIAS"
	CodeNoCharacter        = "NO_CHARACTER"
	CodeTargetNotFound     = "TARGET_NOT_FOUND"
	CodeShutdownRequested  = "SHUTDOWN_REQUESTED"
	CodeInvalidName        = "INVALID_NAME"
	CodeEmptyCommand       = "EMPTY_COMMAND"
	CodeCommandTooLong     = "COMMAND_TOO_LONG"
	CodeBadArguments       = "BAD_ARGUMENTS"
	CodeInjectionBlocked   = "INJECTION_BLOCKED"
	CodeAliasDepthExceeded = "ALIAS_DEPTH_EXCEEDED"
	CodeAliasLimitReached  = "ALIAS_LIMIT_REACHED"
	CodeReservedName       = "RESERVED_NAME"
	CodeNoAliasCache       = "NO_ALIAS_CACHE"
	CodeNoModeration       = "NO_MODERATION_SERVICE"
	CodeNilServices        = "NIL_SERVICES"
	CodeAliasConflict      = "ALIAS_CONFLICT"
)

// Sentinel errors returned by WorldService implementations. Handlers compare
// against these with errors.Is to distinguish expected conditions (not
// found, permission denied) from unexpected ones, without depending on a
// concrete world-model package.
var (
	ErrWorldNotFound          = errors.New("not found")
	ErrWorldPermissionDenied  = errors.New("permission denied")
	ErrAccessEvaluationFailed = errors.New("access evaluation failed")
)

// ErrShutdownRequested signals that a command handler has requested a
// graceful server shutdown. The orchestrator checks for it with errors.Is
// after dispatch to distinguish it from an ordinary command failure.
var ErrShutdownRequested = errors.New("shutdown requested")

// Construction-time sentinel errors for the dispatcher and its middlewares.
var (
	ErrNilRegistry     = errors.New("registry must not be nil")
	ErrNilEngine       = errors.New("access policy engine must not be nil")
	ErrNilRateLimiter  = errors.New("rate limiter must not be nil")
)

// ErrUnknownCommand creates an error for an unknown command.
func ErrUnknownCommand(cmd string) error {
	return oops.Code(CodeUnknownCommand).
		With("command", cmd).
		Errorf("unknown command: %s", cmd)
}

// ErrPermissionDenied creates an error for permission denial.
func ErrPermissionDenied(cmd, capability string) error {
	return oops.Code(CodePermissionDenied).
		With("command", cmd).
		With("capability", capability).
		Errorf("permission denied for command %s", cmd)
}

// ErrInvalidArgs creates an error for invalid arguments.
func ErrInvalidArgs(cmd, usage string) error {
	return oops.Code(CodeInvalidArgs).
		With("command", cmd).
		With("usage", usage).
		Errorf("invalid arguments")
}

// WorldError creates an error for world state issues with a player-facing message.
func WorldError(message string, cause error) error {
	builder := oops.Code(CodeWorldError).With("message", message)
	if cause != nil {
		return builder.Wrap(cause)
	}
	return builder.Errorf("%s", message)
}

// ErrRateLimited creates an error for rate limiting.
func ErrRateLimited(cooldownMs int64) error {
	return oops.Code(CodeRateLimited).
		With("cooldown_ms", cooldownMs).
		Errorf("Too many commands. Please slow down.")
}

// ErrCircularAlias creates an error for circular alias detection.
func ErrCircularAlias(alias string) error {
	return oops.Code(CodeCircularAlias).
		With("alias", alias).
		Errorf("Alias rejected: circular reference detected (expansion depth exceeded)")
}

// ErrAliasConflict creates an error for a system alias whose name is already
// taken by another system alias.
func ErrAliasConflict(alias, existing string) error {
	return oops.Code(CodeAliasConflict).
		With("alias", alias).
		With("existing", existing).
		Errorf("alias %s shadows existing system alias for %s", alias, existing)
}

// ErrNilServices creates an error for a command execution that carries no
// Services, returned by the dispatcher instead of letting a handler panic.
func ErrNilServices() error {
	return oops.Code(CodeNilServices).
		Errorf("command execution has no services configured")
}

// ErrNoCharacter creates an error when command is executed without a character.
func ErrNoCharacter() error {
	return oops.Code(CodeNoCharacter).
		Errorf("no character associated with session")
}

// ErrTargetNotFound creates an error for a missing player/character target.
func ErrTargetNotFound(target string) error {
	return oops.Code(CodeTargetNotFound).
		With("target", target).
		Errorf("player not found: %s", target)
}

// ErrEmptyCommand creates an error for input that normalizes away to nothing.
func ErrEmptyCommand() error {
	return oops.Code(CodeEmptyCommand).
		Errorf("no command provided")
}

// ErrCommandTooLong creates an error for input exceeding the configured hard
// cap (spec default: 1000 octets), raised by the normalizer (C1) before any
// other processing happens.
func ErrCommandTooLong(length, max int) error {
	return oops.Code(CodeCommandTooLong).
		With("length", length).
		With("max", max).
		Errorf("command exceeds maximum length of %d characters", max)
}

// ErrBadArguments creates an error for a field that failed per-variant
// validation (direction, duration, player-name shape, free-text length).
func ErrBadArguments(field, reason string) error {
	return oops.Code(CodeBadArguments).
		With("field", field).
		With("reason", reason).
		Errorf("invalid %s: %s", field, reason)
}

// ErrInjectionBlocked creates an error for free-text input rejected by the
// injection screen (C2 step 4), naming whichever of the disallowed
// character or pattern tripped the check.
func ErrInjectionBlocked(chars, pattern string) error {
	builder := oops.Code(CodeInjectionBlocked)
	if chars != "" {
		builder = builder.With("chars", chars)
	}
	if pattern != "" {
		builder = builder.With("pattern", pattern)
	}
	return builder.Errorf("input contains disallowed characters or patterns")
}

// ErrAliasDepthExceeded creates an error for alias expansion that exceeded
// the configured recursion depth without completing (spec Open Question 1's
// re-entry-counter bound, distinct from the graph-based ErrCircularAlias).
func ErrAliasDepthExceeded(alias string, depth int) error {
	return oops.Code(CodeAliasDepthExceeded).
		With("alias", alias).
		With("depth", depth).
		Errorf("alias expansion too deep")
}

// ErrAliasLimitReached creates an error for a player who already has the
// maximum number of aliases and is attempting to add a new (not replace an
// existing) one.
func ErrAliasLimitReached(limit int) error {
	return oops.Code(CodeAliasLimitReached).
		With("limit", limit).
		Errorf("alias limit of %d reached", limit)
}

// ErrReservedName creates an error for an alias or command name that
// collides with a reserved word.
func ErrReservedName(name string) error {
	return oops.Code(CodeReservedName).
		With("name", name).
		Errorf("%s is a reserved name", name)
}

// ErrNoModerationService creates an error for when a moderation command is
// attempted without a configured ModerationService collaborator.
func ErrNoModerationService() error {
	return oops.Code(CodeNoModeration).
		Errorf("moderation operations require a configured moderation service")
}

// PlayerMessage extracts a player-facing message from an error.
func PlayerMessage(err error) string {
	if err == nil {
		return "Something went wrong. Try again."
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "Something went wrong. Try again."
	}

	switch oopsErr.Code() {
	case CodeUnknownCommand:
		return "Unknown command. Try 'help'."
	case CodePermissionDenied:
		return "You don't have permission to do that."
	case CodeInvalidArgs:
		if usage, ok := oopsErr.Context()["usage"].(string); ok && usage != "" {
			return "Usage: " + usage
		}
		return "Invalid arguments."
	case CodeWorldError:
		if msg, ok := oopsErr.Context()["message"].(string); ok {
			return msg
		}
		return "Something went wrong. Try again."
	case CodeRateLimited:
		return "Too many commands. Please slow down."
	case CodeCircularAlias:
		return "Alias rejected: circular reference detected (expansion depth exceeded)"
	case CodeNoCharacter:
		return "No character selected. Please select a character first."
	case CodeTargetNotFound:
		if target, ok := oopsErr.Context()["target"].(string); ok && target != "" {
			return "Target not found: " + target
		}
		return "Target not found."
	case CodeShutdownRequested:
		return "Server is shutting down."
	case CodeEmptyCommand:
		return "Please enter a command."
	case CodeCommandTooLong:
		return "Command is too long."
	case CodeBadArguments:
		if reason, ok := oopsErr.Context()["reason"].(string); ok && reason != "" {
			return "Invalid input: " + reason
		}
		return "Invalid input."
	case CodeInjectionBlocked:
		return "That input contains characters that aren't allowed."
	case CodeAliasDepthExceeded:
		return "Alias rejected: expansion too deep."
	case CodeAliasLimitReached:
		return "You have reached the maximum number of aliases."
	case CodeReservedName:
		return "That name is reserved and can't be used."
	case CodeInvalidName:
		return oopsErr.Error()
	case CodeNoAliasCache:
		return "Alias system is not available. Contact the server administrator."
	case CodeNilServices:
		return "Game services are not available right now."
	default:
		return "Something went wrong. Try again."
	}
}
