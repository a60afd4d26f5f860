// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the tafakkur TUI.
//
// Colors are adaptive pairs that pick a light or dark variant based on the
// terminal background. The Theme bundles every lipgloss style the views
// need, so rendering code never constructs styles inline.
package styles
