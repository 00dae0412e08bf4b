// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package testutil

import (
	"context"
	"sync"

	"github.com/mythosmud/mythosmud/internal/command"
	"github.com/mythosmud/mythosmud/internal/domain"
)

// FakeWorldService is an in-memory command.WorldService for handler tests.
// It has no authorization logic of its own: access.AccessControl is the
// collaborator that decides reads/writes, not the room registry, so fixtures
// configure rooms/exits/characters directly and set errors to simulate
// access denial or backend failure.
type FakeWorldService struct {
	mu         sync.Mutex
	rooms      map[domain.RoomId]command.RoomView
	exits      map[domain.RoomId][]command.ExitView
	characters map[domain.PlayerId]command.CharacterView
	restRooms  map[domain.RoomId]bool
	names      map[string]domain.PlayerId
	locations  map[domain.PlayerId]domain.RoomId
	inventory  map[domain.PlayerId][]string

	roomErr      map[domain.RoomId]error
	exitsErr     map[domain.RoomId]error
	characterErr map[domain.PlayerId]error
	moveErr      error
	moved        []MoveCall
}

// MoveCall records a single MoveCharacter invocation for assertions.
type MoveCall struct {
	CharacterID domain.PlayerId
	ToRoomID    domain.RoomId
}

// NewFakeWorldService returns an empty FakeWorldService.
func NewFakeWorldService() *FakeWorldService {
	return &FakeWorldService{
		rooms:        make(map[domain.RoomId]command.RoomView),
		exits:        make(map[domain.RoomId][]command.ExitView),
		characters:   make(map[domain.PlayerId]command.CharacterView),
		restRooms:    make(map[domain.RoomId]bool),
		names:        make(map[string]domain.PlayerId),
		locations:    make(map[domain.PlayerId]domain.RoomId),
		inventory:    make(map[domain.PlayerId][]string),
		roomErr:      make(map[domain.RoomId]error),
		exitsErr:     make(map[domain.RoomId]error),
		characterErr: make(map[domain.PlayerId]error),
	}
}

// WithName registers the name under which FindCharacterByName resolves id.
func (f *FakeWorldService) WithName(name string, id domain.PlayerId) *FakeWorldService {
	f.names[name] = id
	return f
}

// WithLocation registers id's current room, used by GetCharacterLocation.
func (f *FakeWorldService) WithLocation(id domain.PlayerId, roomID domain.RoomId) *FakeWorldService {
	f.locations[id] = roomID
	return f
}

// WithInventory registers id's carried item names.
func (f *FakeWorldService) WithInventory(id domain.PlayerId, items ...string) *FakeWorldService {
	f.inventory[id] = items
	return f
}

// WithRoom registers a room's display content.
func (f *FakeWorldService) WithRoom(id domain.RoomId, view command.RoomView) *FakeWorldService {
	f.rooms[id] = view
	return f
}

// WithRoomErr makes GetRoom(id) fail with err.
func (f *FakeWorldService) WithRoomErr(id domain.RoomId, err error) *FakeWorldService {
	f.roomErr[id] = err
	return f
}

// WithExits registers the exits leading out of a room.
func (f *FakeWorldService) WithExits(id domain.RoomId, exits ...command.ExitView) *FakeWorldService {
	f.exits[id] = exits
	return f
}

// WithExitsErr makes GetExits(id) fail with err.
func (f *FakeWorldService) WithExitsErr(id domain.RoomId, err error) *FakeWorldService {
	f.exitsErr[id] = err
	return f
}

// WithCharacter registers a character's display summary.
func (f *FakeWorldService) WithCharacter(id domain.PlayerId, view command.CharacterView) *FakeWorldService {
	f.characters[id] = view
	return f
}

// WithCharacterErr makes GetCharacter(id) fail with err.
func (f *FakeWorldService) WithCharacterErr(id domain.PlayerId, err error) *FakeWorldService {
	f.characterErr[id] = err
	return f
}

// WithRestRoom flags id as a rest location.
func (f *FakeWorldService) WithRestRoom(id domain.RoomId) *FakeWorldService {
	f.restRooms[id] = true
	return f
}

// WithMoveErr makes every MoveCharacter call fail with err.
func (f *FakeWorldService) WithMoveErr(err error) *FakeWorldService {
	f.moveErr = err
	return f
}

// Moves returns the recorded MoveCharacter calls.
func (f *FakeWorldService) Moves() []MoveCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]MoveCall, len(f.moved))
	copy(out, f.moved)
	return out
}

// GetRoom implements command.WorldService.
func (f *FakeWorldService) GetRoom(_ context.Context, _ string, id domain.RoomId) (command.RoomView, error) {
	if err := f.roomErr[id]; err != nil {
		return command.RoomView{}, err
	}
	return f.rooms[id], nil
}

// GetExits implements command.WorldService.
func (f *FakeWorldService) GetExits(_ context.Context, _ string, roomID domain.RoomId) ([]command.ExitView, error) {
	if err := f.exitsErr[roomID]; err != nil {
		return nil, err
	}
	return f.exits[roomID], nil
}

// MoveCharacter implements command.WorldService.
func (f *FakeWorldService) MoveCharacter(_ context.Context, _ string, characterID domain.PlayerId, toRoomID domain.RoomId) error {
	if f.moveErr != nil {
		return f.moveErr
	}
	f.mu.Lock()
	f.moved = append(f.moved, MoveCall{CharacterID: characterID, ToRoomID: toRoomID})
	f.mu.Unlock()
	return nil
}

// GetCharacter implements command.WorldService.
func (f *FakeWorldService) GetCharacter(_ context.Context, _ string, id domain.PlayerId) (command.CharacterView, error) {
	if err := f.characterErr[id]; err != nil {
		return command.CharacterView{}, err
	}
	return f.characters[id], nil
}

// IsRestLocation implements command.WorldService.
func (f *FakeWorldService) IsRestLocation(_ context.Context, roomID domain.RoomId) (bool, error) {
	return f.restRooms[roomID], nil
}

// FindCharacterByName implements command.WorldService.
func (f *FakeWorldService) FindCharacterByName(_ context.Context, _, name string) (domain.PlayerId, error) {
	id, ok := f.names[name]
	if !ok {
		return domain.PlayerId{}, command.ErrWorldNotFound
	}
	return id, nil
}

// GetCharacterLocation implements command.WorldService.
func (f *FakeWorldService) GetCharacterLocation(_ context.Context, _ string, id domain.PlayerId) (domain.RoomId, error) {
	roomID, ok := f.locations[id]
	if !ok {
		return "", command.ErrWorldNotFound
	}
	return roomID, nil
}

// GetInventory implements command.WorldService.
func (f *FakeWorldService) GetInventory(_ context.Context, _ string, id domain.PlayerId) ([]string, error) {
	return f.inventory[id], nil
}

var _ command.WorldService = (*FakeWorldService)(nil)
