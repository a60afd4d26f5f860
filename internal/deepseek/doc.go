// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package deepseek provides the DeepSeek chat-completion integration.
//
// Every request carries a fixed Arabic system instruction that directs the
// model to answer in two labeled sections, deep reasoning followed by the
// final answer. ParseReply splits a raw completion back into those
// sections; replies without labels degrade to a plain final answer rather
// than an error.
package deepseek
