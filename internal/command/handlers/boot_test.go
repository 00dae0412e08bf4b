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

func TestBootHandler_NoArgs(t *testing.T) {
	player := testutil.RegularPlayer()
	services := testutil.NewServicesBuilder().WithWorld(testutil.NewFakeWorldService()).Build()
	exec, _ := testutil.NewExecutionBuilder().
		WithCharacter(player).
		WithArgs("").
		WithServices(services).
		Build()

	err := BootHandler(context.Background(), exec)
	require.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, command.CodeInvalidArgs, oopsErr.Code())
}

func TestBootHandler_SelfBoot_Success(t *testing.T) {
	player := testutil.RegularPlayer()

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(player.CharacterID, ulid.Make())

	world := testutil.NewFakeWorldService().
		WithCharacter(player.CharacterID, command.CharacterView{Name: player.Name})

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithWorld(world).
		WithBroadcaster(event.NewBus()).
		Build()
	exec, buf := testutil.NewExecutionBuilder().
		WithCharacter(player).
		WithArgs(player.Name).
		WithServices(services).
		Build()

	err := BootHandler(context.Background(), exec)
	require.NoError(t, err)

	assert.Nil(t, sessionMgr.GetSession(player.CharacterID), "session should be ended after self-boot")
	assert.Contains(t, buf.String(), "Disconnecting")
}

func TestBootHandler_SelfBoot_WithReason(t *testing.T) {
	player := testutil.RegularPlayer()

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(player.CharacterID, ulid.Make())

	broadcaster := event.NewBus()
	ch := broadcaster.Subscribe("player:" + player.CharacterID.String(), "")

	world := testutil.NewFakeWorldService().
		WithCharacter(player.CharacterID, command.CharacterView{Name: player.Name})

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithWorld(world).
		WithBroadcaster(broadcaster).
		Build()
	exec, _ := testutil.NewExecutionBuilder().
		WithCharacter(player).
		WithArgs(player.Name + " going to bed").
		WithServices(services).
		Build()

	err := BootHandler(context.Background(), exec)
	require.NoError(t, err)

	select {
	case ev := <-ch:
		assert.Equal(t, event.TypeSystem, ev.Type)
		assert.Contains(t, string(ev.Payload), "going to bed")
	default:
		t.Error("expected notification event to be broadcast")
	}
}

func TestBootHandler_BootOthers_WithoutCapability(t *testing.T) {
	executor := testutil.RegularPlayer()
	target := testutil.NewPlayer("Troublemaker")

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(executor.CharacterID, ulid.Make())
	sessionMgr.Connect(target.CharacterID, ulid.Make())

	world := testutil.NewFakeWorldService().
		WithCharacter(executor.CharacterID, command.CharacterView{Name: executor.Name}).
		WithCharacter(target.CharacterID, command.CharacterView{Name: target.Name})

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithWorld(world).
		WithAccess(accesstest.DenyAll{}).
		Build()
	exec, _ := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs(target.Name).
		WithServices(services).
		Build()

	err := BootHandler(context.Background(), exec)
	require.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, command.CodePermissionDenied, oopsErr.Code())
	assert.NotNil(t, sessionMgr.GetSession(target.CharacterID), "target session should still exist")
}

func TestBootHandler_TargetNotFound(t *testing.T) {
	executor := testutil.RegularPlayer()

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(executor.CharacterID, ulid.Make())

	world := testutil.NewFakeWorldService().
		WithCharacter(executor.CharacterID, command.CharacterView{Name: executor.Name})

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithWorld(world).
		Build()
	exec, _ := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs("Ghost").
		WithServices(services).
		Build()

	err := BootHandler(context.Background(), exec)
	require.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, command.CodeTargetNotFound, oopsErr.Code())
}

func TestBootHandler_Success(t *testing.T) {
	executor := testutil.AdminPlayer()
	target := testutil.NewPlayer("Troublemaker")

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(executor.CharacterID, ulid.Make())
	sessionMgr.Connect(target.CharacterID, ulid.Make())

	world := testutil.NewFakeWorldService().
		WithCharacter(executor.CharacterID, command.CharacterView{Name: executor.Name}).
		WithCharacter(target.CharacterID, command.CharacterView{Name: target.Name})

	access := accesstest.NewMockAccessControl()
	access.Grant("char:"+executor.CharacterID.String(), "execute", "admin.boot")

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithWorld(world).
		WithAccess(access).
		Build()
	exec, buf := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs(target.Name).
		WithServices(services).
		Build()

	err := BootHandler(context.Background(), exec)
	require.NoError(t, err)

	assert.Nil(t, sessionMgr.GetSession(target.CharacterID))
	assert.Contains(t, buf.String(), "has been booted")
}

func TestBootHandler_SuccessWithReason(t *testing.T) {
	executor := testutil.AdminPlayer()
	target := testutil.NewPlayer("Troublemaker")

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(executor.CharacterID, ulid.Make())
	sessionMgr.Connect(target.CharacterID, ulid.Make())

	world := testutil.NewFakeWorldService().
		WithCharacter(executor.CharacterID, command.CharacterView{Name: executor.Name}).
		WithCharacter(target.CharacterID, command.CharacterView{Name: target.Name})

	access := accesstest.NewMockAccessControl()
	access.Grant("char:"+executor.CharacterID.String(), "execute", "admin.boot")

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithWorld(world).
		WithAccess(access).
		Build()
	exec, buf := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs(target.Name + " spamming the global channel").
		WithServices(services).
		Build()

	err := BootHandler(context.Background(), exec)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "spamming the global channel")
}

func TestBootHandler_CaseInsensitiveMatch(t *testing.T) {
	executor := testutil.AdminPlayer()
	target := testutil.NewPlayer("Troublemaker")

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(executor.CharacterID, ulid.Make())
	sessionMgr.Connect(target.CharacterID, ulid.Make())

	world := testutil.NewFakeWorldService().
		WithCharacter(executor.CharacterID, command.CharacterView{Name: executor.Name}).
		WithCharacter(target.CharacterID, command.CharacterView{Name: target.Name})

	access := accesstest.NewMockAccessControl()
	access.Grant("char:"+executor.CharacterID.String(), "execute", "admin.boot")

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithWorld(world).
		WithAccess(access).
		Build()
	exec, _ := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs("troublemaker").
		WithServices(services).
		Build()

	err := BootHandler(context.Background(), exec)
	require.NoError(t, err)
	assert.Nil(t, sessionMgr.GetSession(target.CharacterID))
}

func TestBootHandler_SkipsInaccessibleCharacters(t *testing.T) {
	executor := testutil.AdminPlayer()
	hidden := testutil.NewPlayer("Hidden")
	target := testutil.NewPlayer("Troublemaker")

	sessionMgr := session.NewRegistry(nil)
	sessionMgr.Connect(executor.CharacterID, ulid.Make())
	sessionMgr.Connect(hidden.CharacterID, ulid.Make())
	sessionMgr.Connect(target.CharacterID, ulid.Make())

	world := testutil.NewFakeWorldService().
		WithCharacter(executor.CharacterID, command.CharacterView{Name: executor.Name}).
		WithCharacterErr(hidden.CharacterID, command.ErrWorldPermissionDenied).
		WithCharacter(target.CharacterID, command.CharacterView{Name: target.Name})

	access := accesstest.NewMockAccessControl()
	access.Grant("char:"+executor.CharacterID.String(), "execute", "admin.boot")

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithWorld(world).
		WithAccess(access).
		Build()
	exec, _ := testutil.NewExecutionBuilder().
		WithCharacter(executor).
		WithArgs(target.Name).
		WithServices(services).
		Build()

	err := BootHandler(context.Background(), exec)
	require.NoError(t, err)
	assert.Nil(t, sessionMgr.GetSession(target.CharacterID))
}

func TestBootHandler_EndSessionError(t *testing.T) {
	player := testutil.RegularPlayer()

	sessionMgr := session.NewRegistry(nil)
	// Not connected, so EndSession will fail.

	world := testutil.NewFakeWorldService().
		WithCharacter(player.CharacterID, command.CharacterView{Name: player.Name})

	services := testutil.NewServicesBuilder().
		WithSession(sessionMgr).
		WithWorld(world).
		Build()
	exec, _ := testutil.NewExecutionBuilder().
		WithCharacter(player).
		WithArgs(player.Name).
		WithServices(services).
		Build()

	err := BootHandler(context.Background(), exec)
	require.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, command.CodeWorldError, oopsErr.Code())
}
