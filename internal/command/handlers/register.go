// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package handlers

import (
	"github.com/mythosmud/mythosmud/internal/command"
)

// RegisterAll registers all core command handlers with the registry.
// Core commands are those implemented in Go as part of the server.
// Panics if any registration fails (indicates a programming error).
func RegisterAll(reg *command.Registry) {
	mustRegister := func(cfg command.CommandEntryConfig) {
		entry, err := command.NewCommandEntry(cfg)
		if err != nil {
			panic("invalid core command " + cfg.Name + ": " + err.Error())
		}
		if err := reg.Register(*entry); err != nil {
			panic("failed to register core command " + entry.Name + ": " + err.Error())
		}
	}

	// Navigation commands
	mustRegister(command.CommandEntryConfig{
		Name:    "look",
		Handler: LookHandler,
		Help:    "Look at your surroundings or a target",
		Usage:   "look [target]",
		HelpText: `## Look

Examine your surroundings or a specific target.

### Usage

- ` + "`look`" + ` - View the current location
- ` + "`look <target>`" + ` - Examine a specific target

### Examples

- ` + "`look`" + ` - Shows the room name and description
- ` + "`look sign`" + ` - Examine the sign in the room`,
		Source: "core",
	})

	mustRegister(command.CommandEntryConfig{
		Name:    "move",
		Handler: MoveHandler,
		Help:    "Move through an exit",
		Usage:   "move <direction>",
		HelpText: `## Move

Move through an exit to another location.

### Usage

- ` + "`move <direction>`" + ` - Move through the named exit
- ` + "`<direction>`" + ` - Shortcut for move (if direction matches an exit)

### Examples

- ` + "`move north`" + ` or ` + "`north`" + ` - Move north
- ` + "`move out`" + ` - Move through the "out" exit`,
		Source: "core",
	})

	// Session commands
	mustRegister(command.CommandEntryConfig{
		Name:    "quit",
		Handler: QuitHandler,
		Help:    "Disconnect from the game",
		Usage:   "quit",
		HelpText: `## Quit

Disconnect your session from the game.

Your character remains in-world but becomes inactive.

### Usage

- ` + "`quit`" + ` - End your session`,
		Source: "core",
	})

	mustRegister(command.CommandEntryConfig{
		Name:    "rest",
		Handler: RestHandler,
		Help:    "Rest to avoid being disconnected while idle",
		Usage:   "rest",
		HelpText: `## Rest

Begin resting. In an ordinary room this starts a countdown that
disconnects you if nothing interrupts it; in a room flagged as a rest
location it completes instantly.

### Usage

- ` + "`rest`" + ` - Begin resting`,
		Source: "core",
	})

	mustRegister(command.CommandEntryConfig{
		Name:    "who",
		Handler: WhoHandler,
		Help:    "See who is online",
		Usage:   "who",
		HelpText: `## Who

Display a list of all connected players.

Shows character names and how long they've been connected.

### Usage

- ` + "`who`" + ` - List all online players`,
		Source: "core",
	})

	// Chat commands
	mustRegister(command.CommandEntryConfig{
		Name:    "say",
		Handler: SayHandler,
		Help:    "Say something out loud in your room",
		Usage:   "say <message>",
		Source:  "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:    "local",
		Handler: LocalHandler,
		Help:    "Say something to the local area",
		Usage:   "local <message>",
		Source:  "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:    "global",
		Handler: GlobalHandler,
		Help:    "Say something on the global channel",
		Usage:   "global <message>",
		Source:  "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:    "whisper",
		Handler: WhisperHandler,
		Help:    "Send a private message to another player",
		Usage:   "whisper <player> <message>",
		Source:  "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:    "reply",
		Handler: ReplyHandler,
		Help:    "Reply to the last player who whispered you",
		Usage:   "reply <player> <message>",
		Source:  "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:    "emote",
		Handler: EmoteHandler,
		Help:    "Perform a third-person action",
		Usage:   "emote <action>",
		Source:  "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:    "pose",
		Handler: PoseHandler,
		Help:    "Set a freeform pose",
		Usage:   "pose <action>",
		Source:  "core",
	})

	// Character commands
	mustRegister(command.CommandEntryConfig{
		Name:    "status",
		Handler: StatusHandler,
		Help:    "Show your character's status",
		Usage:   "status",
		Source:  "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:    "inventory",
		Handler: InventoryHandler,
		Help:    "List what you are carrying",
		Usage:   "inventory",
		Source:  "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:    "help",
		Handler: HelpHandler,
		Help:    "List commands or show detailed help for one",
		Usage:   "help [command]",
		Source:  "core",
	})

	// Alias commands
	mustRegister(command.CommandEntryConfig{
		Name:    "alias",
		Handler: AliasAddHandler,
		Help:    "Define a personal command alias",
		Usage:   "alias <alias>=<command>",
		Source:  "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:    "unalias",
		Handler: AliasRemoveHandler,
		Help:    "Remove a personal command alias",
		Usage:   "unalias <alias>",
		Source:  "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:    "aliases",
		Handler: AliasListHandler,
		Help:    "List your personal command aliases",
		Usage:   "aliases",
		Source:  "core",
	})

	// System-wide aliases, visible to every player, administered separately
	// from the per-character aliases above.
	mustRegister(command.CommandEntryConfig{
		Name:         "sysalias",
		Handler:      SysaliasAddHandler,
		Capabilities: []string{"admin.alias"},
		Help:         "Define a system-wide command alias",
		Usage:        "sysalias <alias>=<command>",
		Source:       "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:         "sysunsalias",
		Handler:      SysaliasRemoveHandler,
		Capabilities: []string{"admin.alias"},
		Help:         "Remove a system-wide command alias",
		Usage:        "sysunsalias <alias>",
		Source:       "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:         "sysaliases",
		Handler:      SysaliasListHandler,
		Capabilities: []string{"admin.alias"},
		Help:         "List system-wide command aliases",
		Usage:        "sysaliases",
		Source:       "core",
	})

	// Moderation commands
	mustRegister(command.CommandEntryConfig{
		Name:         "mute",
		Handler:      MuteHandler,
		Capabilities: []string{"admin.mute"},
		Help:         "Mute a player in room-local chat",
		Usage:        "mute <player> [minutes]",
		Source:       "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:         "unmute",
		Handler:      UnmuteHandler,
		Capabilities: []string{"admin.mute"},
		Help:         "Lift a room-local mute",
		Usage:        "unmute <player>",
		Source:       "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:         "mute_global",
		Handler:      MuteGlobalHandler,
		Capabilities: []string{"admin.mute"},
		Help:         "Mute a player on the global channel",
		Usage:        "mute_global <player> [minutes]",
		Source:       "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:         "unmute_global",
		Handler:      UnmuteGlobalHandler,
		Capabilities: []string{"admin.mute"},
		Help:         "Lift a global-channel mute",
		Usage:        "unmute_global <player>",
		Source:       "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:         "add_admin",
		Handler:      AddAdminHandler,
		Capabilities: []string{"admin.grant"},
		Help:         "Grant admin capabilities to a player",
		Usage:        "add_admin <player>",
		Source:       "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:         "teleport",
		Handler:      TeleportHandler,
		Capabilities: []string{"admin.teleport"},
		Help:         "Bring a player to your location",
		Usage:        "teleport <player>",
		Source:       "core",
	})
	mustRegister(command.CommandEntryConfig{
		Name:         "goto",
		Handler:      GotoHandler,
		Capabilities: []string{"admin.teleport"},
		Help:         "Move to a player's location",
		Usage:        "goto <player>",
		Source:       "core",
	})

	// Admin commands
	mustRegister(command.CommandEntryConfig{
		Name:         "boot",
		Handler:      BootHandler,
		Capabilities: []string{"admin.boot"},
		Help:         "Disconnect a player",
		Usage:        "boot <character> [reason]",
		HelpText: `## Boot

Forcibly disconnect a player from the game.

### Usage

- ` + "`boot <character>`" + ` - Disconnect the named character
- ` + "`boot <character> <reason>`" + ` - Disconnect with a message

### Examples

- ` + "`boot TroubleUser`" + `
- ` + "`boot TroubleUser AFK for too long`" + `

### Permissions

Requires the ` + "`admin.boot`" + ` capability.`,
		Source: "core",
	})

	mustRegister(command.CommandEntryConfig{
		Name:         "shutdown",
		Handler:      ShutdownHandler,
		Capabilities: []string{"admin.shutdown"},
		Help:         "Shut down the server",
		Usage:        "shutdown [delay_seconds]",
		HelpText: `## Shutdown

Initiate a server shutdown.

### Usage

- ` + "`shutdown`" + ` - Immediate shutdown
- ` + "`shutdown <seconds>`" + ` - Shutdown after delay

### Examples

- ` + "`shutdown`" + ` - Shut down immediately
- ` + "`shutdown 60`" + ` - Shut down in 60 seconds

### Permissions

Requires the ` + "`admin.shutdown`" + ` capability.`,
		Source: "core",
	})

	mustRegister(command.CommandEntryConfig{
		Name:         "wall",
		Handler:      WallHandler,
		Capabilities: []string{"admin.wall"},
		Help:         "Broadcast a message to all players",
		Usage:        "wall [urgency] <message>",
		HelpText: `## Wall

Send a broadcast message to all connected players.

### Usage

- ` + "`wall <message>`" + ` - Send an info-level announcement
- ` + "`wall info <message>`" + ` - Same as above (explicit)
- ` + "`wall warning <message>`" + ` - Send a warning message
- ` + "`wall critical <message>`" + ` - Send a critical alert

### Urgency Levels

- ` + "`info`" + ` - Normal announcements (default)
- ` + "`warning`" + ` - Important notices
- ` + "`critical`" + ` - Urgent alerts

### Examples

- ` + "`wall Server restart in 10 minutes`" + `
- ` + "`wall warning Database maintenance starting soon`" + `

### Permissions

Requires the ` + "`admin.wall`" + ` capability.`,
		Source: "core",
	})

}
