// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

// turnSettledMsg delivers a completed reasoning turn for a conversation.
type turnSettledMsg struct {
	ConversationID string
	Result         *TurnResult
}

// turnFailedMsg delivers a failed turn. Message is Arabic and shown to
// the user inside an error bubble.
type turnFailedMsg struct {
	ConversationID string
	Message        string
}

// titleGeneratedMsg delivers a generated conversation title.
type titleGeneratedMsg struct {
	ConversationID string
	Title          string
}

// snapshotSavedMsg reports the outcome of a background snapshot save.
type snapshotSavedMsg struct {
	Err error
}
