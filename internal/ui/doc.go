// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the Bubble Tea terminal interface.
//
// The interface is a conversation view with an input line, a scrollback
// viewport, and a status bar. One turn may be in flight per conversation;
// submissions while a turn is pending are ignored. Every mutation of the
// conversation list schedules a snapshot save.
package ui
