// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// A Conversation owns an ordered list of Messages with per-conversation
// monotonically increasing integer IDs. Assistant output is split across
// flagged messages: an optional reasoning message, a final answer message,
// or an error message. The History projection produces the role/content
// pairs sent back to the orchestration pipeline as conversation context.
package model
