// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package handlers

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mythosmud/mythosmud/internal/access/accesstest"
	"github.com/mythosmud/mythosmud/internal/command"
	"github.com/mythosmud/mythosmud/internal/command/handlers/testutil"
	"github.com/mythosmud/mythosmud/internal/event"
	"github.com/mythosmud/mythosmud/internal/session"
)

func TestWallHandler_NoArgs(t *testing.T) {
	executor := testutil.AdminPlayer()
	services := testutil.NewServicesBuilder().Build()
	exec, _ := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs("").
		WithServices(services).
		Build()

	err := WallHandler(context.Background(), exec)
	require.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, command.CodeInvalidArgs, oopsErr.Code())
}

func TestWallHandler_WhitespaceOnlyArgs(t *testing.T) {
	executor := testutil.AdminPlayer()
	services := testutil.NewServicesBuilder().Build()
	exec, _ := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs("   ").
		WithServices(services).
		Build()

	err := WallHandler(context.Background(), exec)
	require.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, command.CodeInvalidArgs, oopsErr.Code())
}

// Note: WallHandler validates its arguments before its own admin.wall check,
// so the two tests above need no grant. The dispatcher also checks
// capabilities; see TestDispatcher_PermissionDenied in dispatcher_test.go.

func TestWallHandler_Success_BroadcastsToAllSessions(t *testing.T) {
	executor := testutil.AdminPlayer()
	target1 := testutil.NewPlayer("Target1")
	target2 := testutil.NewPlayer("Target2")

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(executor.CharacterID, ulid.Make())
	sessionMgr.Connect(target1.CharacterID, ulid.Make())
	sessionMgr.Connect(target2.CharacterID, ulid.Make())

	access := accesstest.NewMockAccessControl()
	access.Grant("char:"+executor.CharacterID.String(), "execute", "admin.wall")

	broadcaster := event.NewBus()
	ch1 := broadcaster.Subscribe("player:" + executor.CharacterID.String(), "")
	ch2 := broadcaster.Subscribe("player:" + target1.CharacterID.String(), "")
	ch3 := broadcaster.Subscribe("player:" + target2.CharacterID.String(), "")

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithAccess(access).
		WithBroadcaster(broadcaster).
		Build()
	exec, buf := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs("Server going down in 5 minutes").
		WithServices(services).
		Build()

	err := WallHandler(context.Background(), exec)
	require.NoError(t, err)

	for i, ch := range []chan event.Event{ch1, ch2, ch3} {
		select {
		case ev := <-ch:
			assert.Equal(t, event.TypeSystem, ev.Type, "session %d: event type mismatch", i)
			assert.Contains(t, string(ev.Payload), "[ADMIN ANNOUNCEMENT]", "session %d: missing announcement prefix", i)
			assert.Contains(t, string(ev.Payload), "Admin", "session %d: missing admin name", i)
			assert.Contains(t, string(ev.Payload), "Server going down in 5 minutes", "session %d: missing message", i)
		default:
			t.Errorf("session %d: expected event but none received", i)
		}
	}

	assert.Contains(t, buf.String(), "Announcement sent to 3 session")
}

func TestWallHandler_Success_SingleSession(t *testing.T) {
	executor := testutil.AdminPlayer()

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(executor.CharacterID, ulid.Make())

	access := accesstest.NewMockAccessControl()
	access.Grant("char:"+executor.CharacterID.String(), "execute", "admin.wall")

	broadcaster := event.NewBus()
	ch := broadcaster.Subscribe("player:" + executor.CharacterID.String(), "")

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithAccess(access).
		WithBroadcaster(broadcaster).
		Build()
	exec, buf := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs("Test message").
		WithServices(services).
		Build()

	err := WallHandler(context.Background(), exec)
	require.NoError(t, err)

	select {
	case ev := <-ch:
		assert.Equal(t, event.TypeSystem, ev.Type)
		assert.Contains(t, string(ev.Payload), "[ADMIN ANNOUNCEMENT]")
	default:
		t.Error("expected event but none received")
	}

	output := buf.String()
	assert.Contains(t, output, "1 session")
	assert.NotContains(t, output, "sessions")
}

func TestWallHandler_Success_NoActiveSessions(t *testing.T) {
	executor := testutil.AdminPlayer()

	sessionMgr := session.NewRegistry(nil)

	access := accesstest.NewMockAccessControl()
	access.Grant("char:"+executor.CharacterID.String(), "execute", "admin.wall")

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithAccess(access).
		WithBroadcaster(event.NewBus()).
		Build()
	exec, buf := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs("Nobody will hear this").
		WithServices(services).
		Build()

	err := WallHandler(context.Background(), exec)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "0 session")
}

func TestWallHandler_MessageFormat(t *testing.T) {
	executor := testutil.NewPlayer("SuperAdmin")

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(executor.CharacterID, ulid.Make())

	access := accesstest.NewMockAccessControl()
	access.Grant("char:"+executor.CharacterID.String(), "execute", "admin.wall")

	broadcaster := event.NewBus()
	ch := broadcaster.Subscribe("player:" + executor.CharacterID.String(), "")

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithAccess(access).
		WithBroadcaster(broadcaster).
		Build()
	exec, _ := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs("Important announcement").
		WithServices(services).
		Build()

	err := WallHandler(context.Background(), exec)
	require.NoError(t, err)

	select {
	case ev := <-ch:
		assert.Contains(t, string(ev.Payload), "[ADMIN ANNOUNCEMENT] SuperAdmin: Important announcement")
	default:
		t.Error("expected event but none received")
	}
}

func TestWallHandler_ActorIsSystem(t *testing.T) {
	executor := testutil.AdminPlayer()

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(executor.CharacterID, ulid.Make())

	access := accesstest.NewMockAccessControl()
	access.Grant("char:"+executor.CharacterID.String(), "execute", "admin.wall")

	broadcaster := event.NewBus()
	ch := broadcaster.Subscribe("player:" + executor.CharacterID.String(), "")

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithAccess(access).
		WithBroadcaster(broadcaster).
		Build()
	exec, _ := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs("Test").
		WithServices(services).
		Build()

	err := WallHandler(context.Background(), exec)
	require.NoError(t, err)

	select {
	case ev := <-ch:
		assert.Equal(t, event.ActorSystem, ev.Actor.Kind)
		assert.Equal(t, "system", ev.Actor.ID)
	default:
		t.Error("expected event but none received")
	}
}

func TestWallHandler_NilBroadcaster(t *testing.T) {
	executor := testutil.AdminPlayer()

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(executor.CharacterID, ulid.Make())

	access := accesstest.NewMockAccessControl()
	access.Grant("char:"+executor.CharacterID.String(), "execute", "admin.wall")

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithAccess(access).
		WithBroadcaster(nil).
		Build()
	exec, buf := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs("Test").
		WithServices(services).
		Build()

	err := WallHandler(context.Background(), exec)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "1 session")
}

func TestWallHandler_PreservesMessageWhitespace(t *testing.T) {
	executor := testutil.AdminPlayer()

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(executor.CharacterID, ulid.Make())

	access := accesstest.NewMockAccessControl()
	access.Grant("char:"+executor.CharacterID.String(), "execute", "admin.wall")

	broadcaster := event.NewBus()
	ch := broadcaster.Subscribe("player:" + executor.CharacterID.String(), "")

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithAccess(access).
		WithBroadcaster(broadcaster).
		Build()
	exec, _ := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs("  Message with   extra   spaces  ").
		WithServices(services).
		Build()

	err := WallHandler(context.Background(), exec)
	require.NoError(t, err)

	select {
	case ev := <-ch:
		assert.Contains(t, string(ev.Payload), "Message with   extra   spaces")
	default:
		t.Error("expected event but none received")
	}
}

func TestWallHandler_Urgency(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		prefix  string
		message string
	}{
		{"info", "info Test message", "[ADMIN ANNOUNCEMENT]", "Test message"},
		{"warning", "warning Server maintenance soon", "[ADMIN WARNING]", "Server maintenance soon"},
		{"critical", "critical EMERGENCY: Server going down NOW", "[ADMIN CRITICAL]", "EMERGENCY: Server going down NOW"},
		{"crit shorthand", "crit Database issue detected", "[ADMIN CRITICAL]", "Database issue detected"},
		{"default", "Hello everyone", "[ADMIN ANNOUNCEMENT]", "Hello everyone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := testutil.AdminPlayer()

			sessionMgr := session.NewRegistry(nil)
			sessionMgr.Connect(executor.CharacterID, ulid.Make())

			access := accesstest.NewMockAccessControl()
			access.Grant("char:"+executor.CharacterID.String(), "execute", "admin.wall")

			broadcaster := event.NewBus()
			ch := broadcaster.Subscribe("player:" + executor.CharacterID.String(), "")

			services := testutil.NewServicesBuilder().
				WithSession(sessionMgr).
				WithAccess(access).
				WithBroadcaster(broadcaster).
				Build()
			exec, _ := testutil.NewExecutionBuilder().
				WithCharacter(executor).
				WithArgs(tt.args).
				WithServices(services).
				Build()

			err := WallHandler(context.Background(), exec)
			require.NoError(t, err)

			select {
			case ev := <-ch:
				payload := string(ev.Payload)
				assert.Contains(t, payload, tt.prefix)
				assert.Contains(t, payload, tt.message)
			default:
				t.Error("expected event but none received")
			}
		})
	}
}

func TestParseWallArgs(t *testing.T) {
	tests := []struct {
		name            string
		args            string
		expectedUrgency WallUrgency
		expectedMessage string
	}{
		{"info prefix", "info Hello world", WallUrgencyInfo, "Hello world"},
		{"warning prefix", "warning Server maintenance", WallUrgencyWarning, "Server maintenance"},
		{"warn shorthand", "warn Server maintenance", WallUrgencyWarning, "Server maintenance"},
		{"critical prefix", "critical Emergency", WallUrgencyCritical, "Emergency"},
		{"crit shorthand", "crit Emergency", WallUrgencyCritical, "Emergency"},
		{"no prefix defaults to info", "Hello world", WallUrgencyInfo, "Hello world"},
		{"single word", "Hello", WallUrgencyInfo, "Hello"},
		{"case insensitive", "WARNING All caps", WallUrgencyWarning, "All caps"},
		{"unknown prefix treated as message", "unknown Some message", WallUrgencyInfo, "unknown Some message"},
		// Edge case: urgency with only spaces returns spaces as message.
		// The handler trims and validates, rejecting empty messages with ErrInvalidArgs.
		{"urgency with only spaces", "warning   ", WallUrgencyWarning, "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urgency, message := parseWallArgs(tt.args)
			assert.Equal(t, tt.expectedUrgency, urgency)
			assert.Equal(t, tt.expectedMessage, message)
		})
	}
}
