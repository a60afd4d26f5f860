// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator runs a chat turn end to end: validation, the
// search decision, optional web search, prompt composition, the
// completion call, and reply parsing.
//
// Search failures never fail a turn; they are logged and the turn
// proceeds without web context. Completion failures map onto a typed
// error taxonomy carrying the Arabic message and HTTP status the API
// surface returns verbatim.
package orchestrator
