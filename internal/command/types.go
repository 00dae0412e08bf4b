// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package command provides the command registry, parser, and dispatch system.
package command

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mythosmud/mythosmud/internal/access"
	"github.com/mythosmud/mythosmud/internal/domain"
	"github.com/mythosmud/mythosmud/internal/event"
	"github.com/mythosmud/mythosmud/internal/session"
)

// RoomView is the read-only room content a command handler needs to render a
// look or arrival message. Content beyond name/description (objects, NPCs,
// scenery) lives behind the room registry collaborator, not in this view.
type RoomView struct {
	Name        string
	Description string
}

// ExitView describes one exit from a room.
type ExitView struct {
	Direction  string
	ToRoomID   domain.RoomId
	Aliases    []string
}

// MatchesName reports whether name (case-insensitive) matches the exit's
// direction or one of its aliases.
func (e ExitView) MatchesName(name string) bool {
	if strings.EqualFold(e.Direction, name) {
		return true
	}
	for _, a := range e.Aliases {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// CharacterView is the read-only character summary a command handler needs
// (e.g. for the who list). Full character state lives with the world
// registry collaborator.
type CharacterView struct {
	Name string
}

// WorldService defines the room/character model operations required by
// command handlers. This interface follows the "accept interfaces" Go idiom,
// enabling handlers to depend only on the methods they actually use rather
// than a full world-content registry. Room and character content authoring
// (creating/editing rooms, exits, or objects) is out of scope: this module
// only reads and moves, it never authors.
type WorldService interface {
	// GetRoom retrieves a room's display content by ID after checking read
	// authorization.
	GetRoom(ctx context.Context, subjectID string, id domain.RoomId) (RoomView, error)

	// GetExits retrieves all exits from a room after checking read authorization.
	GetExits(ctx context.Context, subjectID string, roomID domain.RoomId) ([]ExitView, error)

	// MoveCharacter moves a character to a new room.
	MoveCharacter(ctx context.Context, subjectID string, characterID domain.PlayerId, toRoomID domain.RoomId) error

	// GetCharacter retrieves a character summary by ID after checking read authorization.
	GetCharacter(ctx context.Context, subjectID string, id domain.PlayerId) (CharacterView, error)

	// IsRestLocation reports whether roomID is flagged as a rest location,
	// used by the session rest-countdown short-circuit.
	IsRestLocation(ctx context.Context, roomID domain.RoomId) (bool, error)

	// FindCharacterByName resolves a player-supplied character name to an ID,
	// for targeted variants (whisper, reply, mute, teleport, goto, add_admin).
	FindCharacterByName(ctx context.Context, subjectID, name string) (domain.PlayerId, error)

	// GetCharacterLocation retrieves a character's current room, used by
	// teleport/goto to resolve a target's position.
	GetCharacterLocation(ctx context.Context, subjectID string, id domain.PlayerId) (domain.RoomId, error)

	// GetInventory retrieves the display names of items a character carries.
	GetInventory(ctx context.Context, subjectID string, id domain.PlayerId) ([]string, error)
}

// ModerationService defines the moderation operations required by admin
// command handlers (mute, global mute, admin grants). It is optional: a nil
// ModerationService causes those handlers to fail with ErrNoModerationService
// rather than panic, the same nil-collaborator pattern AliasCache/AliasRepo
// use.
type ModerationService interface {
	// Mute silences target in room-local chat (say/local/emote/pose) until
	// until. A zero until means indefinite, until explicitly unmuted.
	Mute(ctx context.Context, subjectID string, target domain.PlayerId, until time.Time) error
	// Unmute lifts a room-local mute.
	Unmute(ctx context.Context, subjectID string, target domain.PlayerId) error
	// MuteGlobal silences target in the global chat channel until until.
	MuteGlobal(ctx context.Context, subjectID string, target domain.PlayerId, until time.Time) error
	// UnmuteGlobal lifts a global-channel mute.
	UnmuteGlobal(ctx context.Context, subjectID string, target domain.PlayerId) error
	// GrantAdmin promotes target to an admin capability set.
	GrantAdmin(ctx context.Context, subjectID string, target domain.PlayerId) error
}

// EventBroadcaster defines the broadcast operations required by command handlers.
// This interface allows handlers to send events without depending on the concrete
// Broadcaster implementation.
type EventBroadcaster interface {
	// Broadcast sends an event to all subscribers of its stream.
	Broadcast(ev event.Event)
}

// AliasWriter defines write-only persistence operations for alias management.
// This is a narrow interface containing only the Set/Delete operations needed
// by command handlers.
//
// This interface follows the "accept interfaces" Go idiom, allowing the command
// package to depend on an abstraction rather than a concrete store implementation.
type AliasWriter interface {
	// SetSystemAlias creates or updates a system-wide alias.
	SetSystemAlias(ctx context.Context, alias, command, createdBy string) error
	// DeleteSystemAlias removes a system-wide alias.
	DeleteSystemAlias(ctx context.Context, alias string) error
	// SetPlayerAlias creates or updates a player-specific alias.
	SetPlayerAlias(ctx context.Context, playerID ulid.ULID, alias, command string) error
	// DeletePlayerAlias removes a player-specific alias.
	DeletePlayerAlias(ctx context.Context, playerID ulid.ULID, alias string) error
}

// Compile-time interface checks to ensure concrete types implement the interfaces.
var (
	_ EventBroadcaster = (*event.Bus)(nil)
)

// CommandHandler is the function signature for command handlers.
//
//nolint:revive // Name matches design spec; consistency with spec takes precedence over stutter avoidance
type CommandHandler func(ctx context.Context, exec *CommandExecution) error

// CommandEntryConfig holds the configuration for creating a CommandEntry.
//
// This struct is exported to allow external packages (e.g., integration tests,
// plugins) to construct CommandEntry values using the constructor.
//
//nolint:revive // Name matches design spec; consistency with spec takes precedence over stutter avoidance
type CommandEntryConfig struct {
	Name         string         // canonical name (e.g. "say") - REQUIRED
	Handler      CommandHandler // Go handler or Lua dispatcher - REQUIRED
	Capabilities []string       // ALL required capabilities (AND logic)
	Help         string         // short description (one line)
	Usage        string         // usage pattern (e.g. "say <message>")
	HelpText     string         // detailed markdown help
	Source       string         // "core" or plugin name
}

// CommandEntry represents a registered command in the unified registry.
//
// Immutability Contract:
// CommandEntry is conceptually immutable after construction via NewCommandEntry.
// The Registry stores entries by value, so modifications to a CommandEntry
// after registration do not affect the registered command. However, callers
// SHOULD NOT modify fields after calling NewCommandEntry.
//
// The handler and capabilities fields are private to enforce immutability at
// compile time. Use Handler() to access the handler and GetCapabilities() to
// access capabilities safely; GetCapabilities() returns a defensive copy.
// Other fields remain public since by-value storage in Registry already
// provides implicit protection.
//
//nolint:revive // Name matches design spec; consistency with spec takes precedence over stutter avoidance
type CommandEntry struct {
	Name         string         // canonical name (e.g., "say")
	handler      CommandHandler // Go handler or Lua dispatcher - use Handler() getter
	capabilities []string       // ALL required capabilities (AND logic) - use GetCapabilities() for safe access
	Help         string         // short description (one line)
	Usage        string         // usage pattern (e.g., "say <message>")
	HelpText     string         // detailed markdown help
	Source       string         // "core" or plugin name
}

// Handler returns the command's handler function.
// This provides read-only access to the handler after construction.
func (e *CommandEntry) Handler() CommandHandler {
	return e.handler
}

// Error codes for constructor validation failures.
// CodeNilServices is defined in errors.go.
const (
	CodeEmptyName  = "EMPTY_NAME"
	CodeNilHandler = "NIL_HANDLER"
	CodeZeroID     = "ZERO_ID"
	CodeNilOutput  = "NIL_OUTPUT"
)

// GetCapabilities returns a defensive copy of the command's required capabilities.
// This prevents external modification of the entry's internal state.
// Returns nil if no capabilities are set, or an empty slice if explicitly set to empty.
func (e *CommandEntry) GetCapabilities() []string {
	if e.capabilities == nil {
		return nil
	}
	// Preserve distinction between nil and empty slice
	result := make([]string, len(e.capabilities))
	copy(result, e.capabilities)
	return result
}

// NewCommandEntry creates a validated CommandEntry.
// Returns an error if Name is empty or Handler is nil.
func NewCommandEntry(cfg CommandEntryConfig) (*CommandEntry, error) {
	if cfg.Name == "" {
		return nil, oops.Code(CodeEmptyName).
			With("field", "Name").
			Errorf("Name is required")
	}
	if cfg.Handler == nil {
		return nil, oops.Code(CodeNilHandler).
			With("field", "Handler").
			Errorf("Handler is required")
	}

	return &CommandEntry{
		Name:         cfg.Name,
		handler:      cfg.Handler,
		capabilities: cfg.Capabilities,
		Help:         cfg.Help,
		Usage:        cfg.Usage,
		HelpText:     cfg.HelpText,
		Source:       cfg.Source,
	}, nil
}

// CommandExecutionConfig holds the configuration for creating a CommandExecution.
//
//nolint:revive // Name matches design spec; consistency with spec takes precedence over stutter avoidance
type CommandExecutionConfig struct {
	CharacterID   ulid.ULID     // REQUIRED: must be non-zero
	LocationID    domain.RoomId // optional
	CharacterName string        // optional
	PlayerID      ulid.ULID     // optional
	SessionID     ulid.ULID     // optional
	Args          string        // optional
	Output        io.Writer     // REQUIRED: must be non-nil
	Services      *Services     // REQUIRED: must be non-nil
	InvokedAs     string        // optional
}

// CommandExecution provides context for command execution.
//
// Immutability Contract:
// Critical fields are private with getter methods to prevent accidental modification
// by handlers. The dispatcher sets Args and InvokedAs after parsing, so these remain
// public. All other fields are set via NewCommandExecution and cannot be changed.
//
// Public fields (dispatcher sets after construction):
//   - Args: command arguments after parsing
//   - InvokedAs: original command name before alias resolution
//
// Private fields (read-only via getters):
//   - characterID, locationID, characterName, playerID, sessionID
//   - output, services
//
//nolint:revive // Name matches design spec; consistency with spec takes precedence over stutter avoidance
type CommandExecution struct {
	// Private read-only fields - use getters
	characterID   ulid.ULID
	locationID    domain.RoomId
	characterName string
	playerID      ulid.ULID
	sessionID     ulid.ULID
	output        io.Writer
	services      *Services

	// Public fields - dispatcher sets these after construction
	Args string
	// InvokedAs is the original command name as typed by the user, before alias
	// resolution. For example, if "say'" is an alias for "say", InvokedAs will
	// be "say'" while the handler is for "say". Plugins can use this to detect
	// which variant was invoked.
	InvokedAs string

	// command is the C2-screened, typed argument record for variants that
	// carry free text or a named target (say, whisper, mute, ...). Zero value
	// for variants ParseVariant does not cover; those handlers read Args.
	command Command
}

// Command returns the screened, typed argument record the dispatcher built
// for this execution via ParseVariant. Its Kind is empty for command
// variants ParseVariant does not cover.
func (e *CommandExecution) Command() Command { return e.command }

// CharacterID returns the executing character's ID.
func (e *CommandExecution) CharacterID() ulid.ULID { return e.characterID }

// LocationID returns the character's current location ID.
func (e *CommandExecution) LocationID() domain.RoomId { return e.locationID }

// CharacterName returns the executing character's name.
func (e *CommandExecution) CharacterName() string { return e.characterName }

// PlayerID returns the player's ID (account owner of the character).
func (e *CommandExecution) PlayerID() ulid.ULID { return e.playerID }

// SessionID returns the session ID for the current connection.
func (e *CommandExecution) SessionID() ulid.ULID { return e.sessionID }

// Output returns the writer for command output. MUST be non-nil.
func (e *CommandExecution) Output() io.Writer { return e.output }

// Services returns the service dependencies for command handlers.
func (e *CommandExecution) Services() *Services { return e.services }

// NewCommandExecution creates a validated CommandExecution.
// Returns an error if CharacterID is zero, Services is nil, or Output is nil.
func NewCommandExecution(cfg CommandExecutionConfig) (*CommandExecution, error) {
	if cfg.CharacterID.IsZero() {
		return nil, oops.Code(CodeZeroID).
			With("field", "CharacterID").
			Errorf("CharacterID is required and must be non-zero")
	}
	if cfg.Services == nil {
		return nil, oops.Code(CodeNilServices).
			With("field", "Services").
			Errorf("Services is required")
	}
	if cfg.Output == nil {
		return nil, oops.Code(CodeNilOutput).
			With("field", "Output").
			Errorf("Output is required")
	}

	return &CommandExecution{
		characterID:   cfg.CharacterID,
		locationID:    cfg.LocationID,
		characterName: cfg.CharacterName,
		playerID:      cfg.PlayerID,
		sessionID:     cfg.SessionID,
		Args:          cfg.Args,
		output:        cfg.Output,
		services:      cfg.Services,
		InvokedAs:     cfg.InvokedAs,
	}, nil
}

// Error code for service validation failures.
const (
	CodeNilService = "NIL_SERVICE"
)

// RestCountdownService starts and cancels the per-character
// rest countdowns the idle-disconnect flow runs in the background, separate
// from session.Service since most collaborators never need it.
type RestCountdownService interface {
	StartRestCountdown(ctx context.Context, charID ulid.ULID, duration time.Duration, notify func(string), disconnect func()) bool
	CancelRestCountdown(charID ulid.ULID) bool
}

// ServicesConfig holds the dependencies for constructing a Services instance.
type ServicesConfig struct {
	World       WorldService          // room/character model queries and mutations
	Session     session.Service   // session management
	Access      access.AccessControl  // authorization checks
	Events      event.Store       // event persistence
	Broadcaster EventBroadcaster      // event broadcasting
	AliasCache  *AliasCache           // alias management (optional)
	AliasRepo   AliasWriter           // alias persistence (optional, for alias handlers)
	Registry    *Registry             // command registry (optional)
	Moderation  ModerationService     // mute/admin-grant operations (optional)
	Countdowns  RestCountdownService  // rest countdown management (optional)
}

// Services provides access to core services for command handlers.
//
// Immutability Contract:
// Services is immutable after construction via NewServices. All fields are
// private with getter methods to enforce compile-time immutability.
// Handlers MUST access services only through exec.Services getters within
// the command handler's execution context. The Services struct is shared
// across all command executions.
type Services struct {
	world       WorldService          // room/character model queries and mutations
	session     session.Service   // session management
	access      access.AccessControl  // authorization checks
	events      event.Store       // event persistence
	broadcaster EventBroadcaster      // event broadcasting
	aliasCache  *AliasCache           // alias management (optional, for alias commands)
	aliasRepo   AliasWriter           // alias persistence (optional, for alias handlers)
	registry    *Registry             // command registry (optional, for alias shadow detection)
	moderation  ModerationService     // mute/admin-grant operations (optional)
	countdowns  RestCountdownService  // rest countdown management (optional)
}

// Moderation returns the moderation service for mute/admin-grant operations
// (may be nil).
func (s *Services) Moderation() ModerationService { return s.moderation }

// Countdowns returns the rest countdown service (may be nil).
func (s *Services) Countdowns() RestCountdownService { return s.countdowns }

// World returns the world service for model queries and mutations.
func (s *Services) World() WorldService { return s.world }

// Session returns the session service for session management.
func (s *Services) Session() session.Service { return s.session }

// Access returns the access control service for authorization checks.
func (s *Services) Access() access.AccessControl { return s.access }

// Events returns the event store for event persistence.
func (s *Services) Events() event.Store { return s.events }

// Broadcaster returns the event broadcaster for broadcasting events.
func (s *Services) Broadcaster() EventBroadcaster { return s.broadcaster }

// AliasCache returns the alias cache for alias management (may be nil).
func (s *Services) AliasCache() *AliasCache { return s.aliasCache }

// Registry returns the command registry for alias shadow detection (may be nil).
func (s *Services) Registry() *Registry { return s.registry }

// AliasRepo returns the alias writer for persistence (may be nil).
func (s *Services) AliasRepo() AliasWriter { return s.aliasRepo }

// NewServices creates a validated Services instance.
// Returns an error if any required service is nil.
func NewServices(cfg ServicesConfig) (*Services, error) {
	if cfg.World == nil {
		return nil, oops.Code(CodeNilService).
			With("service", "World").
			Errorf("World service is required")
	}
	if cfg.Session == nil {
		return nil, oops.Code(CodeNilService).
			With("service", "Session").
			Errorf("Session service is required")
	}
	if cfg.Access == nil {
		return nil, oops.Code(CodeNilService).
			With("service", "Access").
			Errorf("Access service is required")
	}
	if cfg.Events == nil {
		return nil, oops.Code(CodeNilService).
			With("service", "Events").
			Errorf("Events service is required")
	}
	if cfg.Broadcaster == nil {
		return nil, oops.Code(CodeNilService).
			With("service", "Broadcaster").
			Errorf("Broadcaster service is required")
	}

	return &Services{
		world:       cfg.World,
		session:     cfg.Session,
		access:      cfg.Access,
		events:      cfg.Events,
		broadcaster: cfg.Broadcaster,
		aliasCache:  cfg.AliasCache,
		aliasRepo:   cfg.AliasRepo,
		registry:    cfg.Registry,
		moderation:  cfg.Moderation,
		countdowns:  cfg.Countdowns,
	}, nil
}

// BroadcastSystemMessage creates and broadcasts a system event with the given message.
// This is a convenience method for handlers that need to send system messages.
// If the Broadcaster is nil, this method logs a debug message and returns.
func (s *Services) BroadcastSystemMessage(stream, message string) {
	if s.broadcaster == nil {
		slog.Debug("BroadcastSystemMessage: broadcaster not configured, message not delivered",
			"stream", stream,
			"message_length", len(message))
		return
	}

	//nolint:errcheck // json.Marshal cannot fail for map[string]string
	payload, _ := json.Marshal(map[string]string{
		"message": message,
	})

	ev := event.Event{
		ID:        ulid.Make(),
		Stream:    stream,
		Type:      event.TypeSystem,
		Timestamp: time.Now(),
		Actor: event.Actor{
			Kind: event.ActorSystem,
			ID:   "system",
		},
		Payload: payload,
	}

	s.broadcaster.Broadcast(ev)
}

// NewTestServices creates a Services instance for testing purposes.
// Unlike NewServices, this function does not validate that required services are non-nil,
// allowing tests to create minimal Services with only the dependencies they need.
// This function should only be used in tests.
func NewTestServices(cfg ServicesConfig) *Services {
	return &Services{
		world:       cfg.World,
		session:     cfg.Session,
		access:      cfg.Access,
		events:      cfg.Events,
		broadcaster: cfg.Broadcaster,
		aliasCache:  cfg.AliasCache,
		aliasRepo:   cfg.AliasRepo,
		registry:    cfg.Registry,
		moderation:  cfg.Moderation,
		countdowns:  cfg.Countdowns,
	}
}

// NewTestEntry creates a CommandEntry for testing purposes.
// Unlike NewCommandEntry, this function does not validate required fields,
// allowing tests to create entries without a handler. This is useful for
// mock registries in external test packages.
// This function should only be used in tests.
func NewTestEntry(cfg CommandEntryConfig) CommandEntry {
	return CommandEntry{
		Name:         cfg.Name,
		handler:      cfg.Handler,
		capabilities: cfg.Capabilities,
		Help:         cfg.Help,
		Usage:        cfg.Usage,
		HelpText:     cfg.HelpText,
		Source:       cfg.Source,
	}
}

// NewTestExecution creates a CommandExecution instance for testing purposes.
// Unlike NewCommandExecution, this function does not validate required fields,
// allowing tests to create minimal executions with only the fields they need.
// This function should only be used in tests.
func NewTestExecution(cfg CommandExecutionConfig) *CommandExecution {
	return &CommandExecution{
		characterID:   cfg.CharacterID,
		locationID:    cfg.LocationID,
		characterName: cfg.CharacterName,
		playerID:      cfg.PlayerID,
		sessionID:     cfg.SessionID,
		Args:          cfg.Args,
		output:        cfg.Output,
		services:      cfg.Services,
		InvokedAs:     cfg.InvokedAs,
	}
}
