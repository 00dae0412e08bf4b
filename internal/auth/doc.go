// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

// Package auth verifies bearer credentials presented by already-authenticated
// clients.
//
// This package does not issue credentials, manage accounts, or handle
// passwords: a player arrives at the transport boundary already holding a
// PlayerId and a bearer token minted by an external identity service.
// Verifier's only job is to check that token and recover the PlayerId it
// names, failing closed on any error.
package auth
