// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package analyzer decides whether a message warrants a web search and
// distills search keywords from Arabic text.
//
// Trigger detection matches a fixed Arabic vocabulary of temporal, news,
// economic, technical, sports, and weather terms, plus literal year tokens.
// Matching runs on normalized text (NFC, diacritics stripped) so vowelled
// input still triggers. Keyword extraction removes punctuation and stop
// words and keeps the first five substantial tokens.
package analyzer
