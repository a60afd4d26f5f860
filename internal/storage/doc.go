// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the conversation state as a single JSON
// snapshot.
//
// The snapshot holds every conversation plus the last active conversation
// ID, mirroring what the front ends need to restore a session. Writes are
// atomic and serialized; a missing snapshot file loads as empty state
// rather than an error.
package storage
