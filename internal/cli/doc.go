// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI front ends: a one-shot ask command
// and a line-oriented chat REPL with input history.
//
// Output adapts to the environment: markdown rendering and color only
// when stdout is a terminal, plain text when piped.
package cli
