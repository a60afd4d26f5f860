// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ContextLabel returns the Arabic speaker label used when the message is
// serialized into the conversation-context block of a prompt.
func (r Role) ContextLabel() string {
	switch r {
	case RoleUser:
		return "المستخدم"
	case RoleAssistant:
		return "المساعد"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// IDs are assigned by the owning Conversation and are strictly increasing
// within it, so newer messages always compare greater than older ones.
type Message struct {
	// Identity
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Presentation flags
	IsReasoning   bool `json:"is_reasoning,omitempty"`
	IsError       bool `json:"is_error,omitempty"`
	IsWebSearch   bool `json:"is_web_search,omitempty"`
	IsFinalAnswer bool `json:"is_final_answer,omitempty"`
}

// IsContextual reports whether the message belongs in the conversation
// context sent with the next turn. Reasoning and error messages are
// presentation-only and never echoed back to the provider.
func (m *Message) IsContextual() bool {
	return !m.IsReasoning && !m.IsError
}

// HistoryMessage is the role/content projection of a contextual message.
type HistoryMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
