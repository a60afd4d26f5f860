// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions shared across the tafakkur
// application.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: display-width aware truncation (wide glyphs count as 2)
//   - CollapseSpaces: whitespace normalization for prompt text
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// Truncate long Arabic titles safely for display
//	title := util.TruncateRunes(answer, 50)
//
//	// Write the conversation snapshot atomically
//	err := util.AtomicWriteFile(path, data, 0644)
package util
