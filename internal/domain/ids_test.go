// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mythosmud/mythosmud/internal/domain"
)

func TestNewRoomId_Valid(t *testing.T) {
	tests := []string{
		"arkham_northside_room_library",
		"arkham_downtown_intersection_main_and_high",
		"a_room_b",
	}
	for _, s := range tests {
		id, err := domain.NewRoomId(s)
		require.NoError(t, err, "room id %q should be valid", s)
		assert.Equal(t, s, id.String())
		assert.False(t, id.IsZero())
	}
}

func TestNewRoomId_Invalid(t *testing.T) {
	tests := []string{
		"",
		"NotLowercase_room_x",
		"missing-suffix",
		"arkham_room",
		strings.Repeat("a", 300) + "_room_x",
	}
	for _, s := range tests {
		_, err := domain.NewRoomId(s)
		require.Error(t, err, "room id %q should be rejected", s)
	}
}

func TestRoomId_ZeroValue(t *testing.T) {
	var id domain.RoomId
	assert.True(t, id.IsZero())
}
