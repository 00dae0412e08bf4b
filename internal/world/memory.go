// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package world provides an in-memory command.WorldService: a handful of
// seeded rooms a character can walk between. Persistence of rooms,
// characters, and authorization state is a named non-goal of the session
// core (see DESIGN.md); this exists so cmd/mythosmud serve has a working
// default world to run against rather than requiring an external content
// database before the server can start at all, the same role
// core.NewMemoryEventStore() plays for the teacher's simple entrypoint.
package world

import (
	"context"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/mythosmud/mythosmud/internal/access"
	"github.com/mythosmud/mythosmud/internal/command"
	"github.com/mythosmud/mythosmud/internal/domain"
)

// SpawnRoomID is where a character lands the first time MemoryWorld ever
// sees it.
const SpawnRoomID domain.RoomId = "arkham_downtown_room_town_square"

// MemoryWorld is a thread-safe, in-memory command.WorldService. Rooms and
// exits are fixed at construction; characters are registered lazily the
// first time they're seen, at SpawnRoomID, with no inventory.
type MemoryWorld struct {
	access access.AccessControl // optional; nil disables read/write checks

	mu         sync.RWMutex
	rooms      map[domain.RoomId]command.RoomView
	exits      map[domain.RoomId][]command.ExitView
	restRooms  map[domain.RoomId]bool
	characters map[domain.PlayerId]command.CharacterView
	locations  map[domain.PlayerId]domain.RoomId
	inventory  map[domain.PlayerId][]string
}

// NewMemoryWorld creates a MemoryWorld seeded with a small starting area.
// accessControl may be nil, which disables the read/write checks the
// WorldService interface otherwise documents; callers that want MemoryWorld
// to double as an access.LocationResolver (so $here tokens resolve) should
// wire it in after construction, since the resolver and the access control
// it resolves for are mutually referential.
func NewMemoryWorld(accessControl access.AccessControl) *MemoryWorld {
	w := &MemoryWorld{
		access:     accessControl,
		rooms:      make(map[domain.RoomId]command.RoomView),
		exits:      make(map[domain.RoomId][]command.ExitView),
		restRooms:  make(map[domain.RoomId]bool),
		characters: make(map[domain.PlayerId]command.CharacterView),
		locations:  make(map[domain.PlayerId]domain.RoomId),
		inventory:  make(map[domain.PlayerId][]string),
	}
	w.seed()
	return w
}

// SetAccessControl wires the access control checked by reads/writes after
// construction, for callers (cmd/mythosmud) that build the world first so
// it can serve as the access control's LocationResolver.
func (w *MemoryWorld) SetAccessControl(accessControl access.AccessControl) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.access = accessControl
}

func (w *MemoryWorld) seed() {
	const library = domain.RoomId("arkham_downtown_room_library")
	const dormitory = domain.RoomId("arkham_downtown_room_dormitory")
	const courtyard = domain.RoomId("arkham_downtown_room_courtyard")

	w.rooms[SpawnRoomID] = command.RoomView{
		Name:        "Town Square",
		Description: "A worn cobblestone square where every newcomer arrives.",
	}
	w.rooms[library] = command.RoomView{
		Name:        "Library",
		Description: "Dust-choked shelves climb past the reach of the lanterns.",
	}
	w.rooms[dormitory] = command.RoomView{
		Name:        "Dormitory",
		Description: "Rows of narrow beds, quiet enough to rest undisturbed.",
	}
	w.rooms[courtyard] = command.RoomView{
		Name:        "Courtyard",
		Description: "An open yard behind the library, empty at this hour.",
	}

	w.exits[SpawnRoomID] = []command.ExitView{
		{Direction: "north", ToRoomID: library},
		{Direction: "east", ToRoomID: dormitory},
	}
	w.exits[library] = []command.ExitView{
		{Direction: "south", ToRoomID: SpawnRoomID},
		{Direction: "out", ToRoomID: courtyard, Aliases: []string{"door"}},
	}
	w.exits[dormitory] = []command.ExitView{
		{Direction: "west", ToRoomID: SpawnRoomID},
	}
	w.exits[courtyard] = []command.ExitView{
		{Direction: "in", ToRoomID: library},
	}

	w.restRooms[dormitory] = true
}

// checkAccess enforces action on resource for subjectID, a no-op when no
// access control is configured.
func (w *MemoryWorld) checkAccess(ctx context.Context, subjectID, action, resource string) error {
	if w.access == nil {
		return nil
	}
	if !w.access.Check(ctx, subjectID, action, resource) {
		return command.ErrWorldPermissionDenied
	}
	return nil
}

// ensureCharacter registers id at SpawnRoomID the first time it's seen.
// Must be called with w.mu held for writing.
func (w *MemoryWorld) ensureCharacter(id domain.PlayerId) {
	if _, ok := w.locations[id]; ok {
		return
	}
	w.locations[id] = SpawnRoomID
	w.characters[id] = command.CharacterView{Name: fmt.Sprintf("Wanderer-%s", id.String()[:6])}
	w.inventory[id] = nil
}

// GetRoom implements command.WorldService.
func (w *MemoryWorld) GetRoom(ctx context.Context, subjectID string, id domain.RoomId) (command.RoomView, error) {
	if err := w.checkAccess(ctx, subjectID, "read", "location:"+string(id)); err != nil {
		return command.RoomView{}, err
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	view, ok := w.rooms[id]
	if !ok {
		return command.RoomView{}, command.ErrWorldNotFound
	}
	return view, nil
}

// GetExits implements command.WorldService.
func (w *MemoryWorld) GetExits(ctx context.Context, subjectID string, roomID domain.RoomId) ([]command.ExitView, error) {
	if err := w.checkAccess(ctx, subjectID, "read", "location:"+string(roomID)); err != nil {
		return nil, err
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	exits := w.exits[roomID]
	out := make([]command.ExitView, len(exits))
	copy(out, exits)
	return out, nil
}

// MoveCharacter implements command.WorldService.
func (w *MemoryWorld) MoveCharacter(ctx context.Context, subjectID string, characterID domain.PlayerId, toRoomID domain.RoomId) error {
	if err := w.checkAccess(ctx, subjectID, "write", "character:"+characterID.String()); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.rooms[toRoomID]; !ok {
		return command.ErrWorldNotFound
	}
	w.ensureCharacter(characterID)
	w.locations[characterID] = toRoomID
	return nil
}

// GetCharacter implements command.WorldService.
func (w *MemoryWorld) GetCharacter(ctx context.Context, subjectID string, id domain.PlayerId) (command.CharacterView, error) {
	if err := w.checkAccess(ctx, subjectID, "read", "character:"+id.String()); err != nil {
		return command.CharacterView{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.ensureCharacter(id)
	return w.characters[id], nil
}

// IsRestLocation implements command.WorldService.
func (w *MemoryWorld) IsRestLocation(_ context.Context, roomID domain.RoomId) (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.restRooms[roomID], nil
}

// FindCharacterByName implements command.WorldService. It searches every
// character MemoryWorld has ever seen, not just those currently online;
// callers needing "online only" semantics should cross-check
// session.Service.ListActiveSessions themselves, as boot.go does.
func (w *MemoryWorld) FindCharacterByName(_ context.Context, _, name string) (domain.PlayerId, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for id, view := range w.characters {
		if view.Name == name {
			return id, nil
		}
	}
	return domain.PlayerId{}, command.ErrWorldNotFound
}

// GetCharacterLocation implements command.WorldService. Not access-checked:
// it is the call that resolves $here in the first place (on connect, and
// for teleport/goto's target lookup), so gating it on a location-based
// permission would be circular.
func (w *MemoryWorld) GetCharacterLocation(_ context.Context, _ string, id domain.PlayerId) (domain.RoomId, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ensureCharacter(id)
	return w.locations[id], nil
}

// GetInventory implements command.WorldService.
func (w *MemoryWorld) GetInventory(_ context.Context, _ string, id domain.PlayerId) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ensureCharacter(id)
	out := make([]string, len(w.inventory[id]))
	copy(out, w.inventory[id])
	return out, nil
}

// CurrentLocation implements access.LocationResolver, so MemoryWorld can
// resolve the $here token for a StaticAccessControl built with it as the
// resolver.
func (w *MemoryWorld) CurrentLocation(_ context.Context, charID string) (string, error) {
	id, err := ulid.Parse(charID)
	if err != nil {
		return "", nil //nolint:nilerr // unparseable subject resolves to "no location", not an error
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return string(w.locations[id]), nil
}

// CharactersAt implements access.LocationResolver. $here:* token resolution
// is not yet exercised by any role in DefaultRoles, so this stays minimal.
func (w *MemoryWorld) CharactersAt(_ context.Context, locationID string) ([]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []string
	for id, loc := range w.locations {
		if string(loc) == locationID {
			out = append(out, id.String())
		}
	}
	return out, nil
}

var (
	_ command.WorldService    = (*MemoryWorld)(nil)
	_ access.LocationResolver = (*MemoryWorld)(nil)
)
