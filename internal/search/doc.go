// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search provides the SerpAPI integration for web search context.
//
// Results are scoped to Arabic-language Google results for the Saudi
// region, limited to recent pages, and formatted as numbered Arabic blocks
// ready for prompt composition. A search that succeeds but matches nothing
// returns the NoResults sentinel rather than an error; callers treat it as
// present-but-empty context.
package search
