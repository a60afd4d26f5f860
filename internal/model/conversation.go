// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/morganforge/tafakkur/internal/util"
)

// DefaultTitle is the placeholder title every new conversation starts with.
// The UI replaces it with a generated summary after the first settled turn.
const DefaultTitle = "محادثة جديدة"

// MaxMessages caps the stored history per conversation. When exceeded, the
// oldest messages are pruned to prevent unbounded snapshot growth.
const MaxMessages = 1000

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a complete chat conversation with history and metadata.
type Conversation struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages
	Messages []*Message `json:"messages"`

	// NextID is the ID the next appended message receives. Persisted so
	// IDs stay monotonic across restarts and clears.
	NextID int64 `json:"next_id"`
}

// NewConversation creates a new conversation with a generated ID and the
// default Arabic title.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
		NextID:    1,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// nextMessageID hands out the next monotonic message ID.
func (c *Conversation) nextMessageID() int64 {
	// Snapshots written before NextID existed load with zero; rebuild
	// from the highest stored ID.
	if c.NextID == 0 {
		var max int64
		for _, m := range c.Messages {
			if m.ID > max {
				max = m.ID
			}
		}
		c.NextID = max + 1
	}
	id := c.NextID
	c.NextID++
	return id
}

func (c *Conversation) append(msg *Message) *Message {
	msg.ID = c.nextMessageID()
	msg.Timestamp = time.Now()
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = msg.Timestamp
	c.pruneOldMessages()
	return msg
}

// AddUserMessage appends a user message and returns it.
func (c *Conversation) AddUserMessage(content string) *Message {
	return c.append(&Message{Role: RoleUser, Content: content})
}

// AddReasoningMessage appends the deep-reasoning section of an assistant
// reply as its own flagged message.
func (c *Conversation) AddReasoningMessage(content string) *Message {
	return c.append(&Message{Role: RoleAssistant, Content: content, IsReasoning: true})
}

// AddFinalAnswerMessage appends the final-answer section of an assistant
// reply. webSearch records whether web results backed the answer.
func (c *Conversation) AddFinalAnswerMessage(content string, webSearch bool) *Message {
	return c.append(&Message{
		Role:          RoleAssistant,
		Content:       content,
		IsFinalAnswer: true,
		IsWebSearch:   webSearch,
	})
}

// AddErrorMessage appends a turn failure as a flagged assistant message.
func (c *Conversation) AddErrorMessage(content string) *Message {
	return c.append(&Message{Role: RoleAssistant, Content: content, IsError: true})
}

// ClearMessages removes all messages but keeps the conversation identity.
// Message IDs keep counting from where they were.
func (c *Conversation) ClearMessages() {
	c.Messages = make([]*Message, 0)
	c.UpdatedAt = time.Now()
}

// pruneOldMessages drops the oldest messages beyond MaxMessages.
func (c *Conversation) pruneOldMessages() {
	if len(c.Messages) > MaxMessages {
		c.Messages = c.Messages[len(c.Messages)-MaxMessages:]
	}
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// History returns the contextual role/content pairs for the orchestration
// pipeline. Reasoning and error messages are excluded.
func (c *Conversation) History() []HistoryMessage {
	history := make([]HistoryMessage, 0, len(c.Messages))
	for _, m := range c.Messages {
		if !m.IsContextual() {
			continue
		}
		history = append(history, HistoryMessage{Role: m.Role, Content: m.Content})
	}
	return history
}

// FirstUserMessage returns the content of the earliest user message, or ""
// when the conversation has none. Used to seed title generation.
func (c *Conversation) FirstUserMessage() string {
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			return m.Content
		}
	}
	return ""
}

// MessageCount returns the number of stored messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsDefaultTitle reports whether the title is still the placeholder.
func (c *Conversation) IsDefaultTitle() bool {
	return c.Title == DefaultTitle
}

// SetTitle replaces the title, normalizing whitespace and capping length.
// Empty or whitespace-only titles are ignored.
func (c *Conversation) SetTitle(title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	c.Title = util.TruncateRunesNoEllipsis(title, 50)
	c.UpdatedAt = time.Now()
}

// Preview returns a short rune-safe excerpt of the latest message for
// conversation lists.
func (c *Conversation) Preview() string {
	if len(c.Messages) == 0 {
		return ""
	}
	last := c.Messages[len(c.Messages)-1]
	return util.TruncateRunes(util.CollapseSpaces(last.Content), 50)
}
