// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package segment splits message content into ordered prose and code
// segments for rendering.
//
// Segmentation is line based: a line whose trimmed form starts with ```
// toggles code mode, and the opening fence may carry a language tag. An
// unterminated fence swallows the rest of the content as code. For
// balanced input, Join(Split(content)) reproduces the content exactly.
package segment
