// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/tafakkur/internal/model"
	"github.com/morganforge/tafakkur/internal/storage"
	"github.com/morganforge/tafakkur/internal/ui/styles"
)

// errorPrefix is prepended to failure messages shown in the conversation.
const errorPrefix = "⚠️ فشل في معالجة طلبك: "

// inputPlaceholder invites the user to type in Arabic.
const inputPlaceholder = "اكتب رسالتك هنا..."

// Model is the Bubble Tea model for the conversation view.
type Model struct {
	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// Conversations
	conversations []*model.Conversation
	active        int

	// sending tracks in-flight turns per conversation ID. A conversation
	// with a pending turn rejects further submissions.
	sending map[string]bool

	// Turn execution
	runner TurnRunner

	// Persistence (nil disables saving)
	store *storage.Store

	// Search override: nil follows the analyzer, otherwise forced.
	searchOverride *bool

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Transient status line
	statusMsg string
}

// New creates the conversation view over the given runner and store.
// The snapshot is loaded eagerly; a missing or empty snapshot starts a
// fresh conversation.
func New(runner TurnRunner, store *storage.Store) *Model {
	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.CharLimit = 10000
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := &Model{
		theme:   styles.NewTheme(),
		sending: make(map[string]bool),
		runner:  runner,
		store:   store,
		input:   ti,
		spinner: sp,
	}

	m.loadSnapshot()
	return m
}

// loadSnapshot restores conversations from disk, or starts fresh.
func (m *Model) loadSnapshot() {
	if m.store != nil {
		if snap, err := m.store.Load(); err == nil && len(snap.Conversations) > 0 {
			m.conversations = snap.Conversations
			m.active = 0
			for i, c := range m.conversations {
				if c.ID == snap.LastActiveID {
					m.active = i
					break
				}
			}
			return
		}
	}
	m.conversations = []*model.Conversation{model.NewConversation()}
	m.active = 0
}

// ActiveConversation returns the conversation currently in view.
func (m *Model) ActiveConversation() *model.Conversation {
	return m.conversations[m.active]
}

// IsSending reports whether the active conversation has a turn in flight.
func (m *Model) IsSending() bool {
	return m.sending[m.ActiveConversation().ID]
}

// ConversationCount returns the number of open conversations.
func (m *Model) ConversationCount() int {
	return len(m.conversations)
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

// Submit sends the input line as a new turn on the active conversation.
// Returns nil when nothing should happen (empty input or turn in flight).
func (m *Model) Submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}

	conv := m.ActiveConversation()
	if m.sending[conv.ID] {
		// One turn in flight per conversation.
		return nil
	}

	// History is captured before the optimistic append so the new message
	// is not echoed back as its own context.
	history := conv.History()

	conv.AddUserMessage(text)
	m.sending[conv.ID] = true
	m.input.Reset()
	m.statusMsg = ""

	return tea.Batch(
		runTurnCmd(m.runner, conv.ID, text, history, m.searchOverride),
		saveSnapshotCmd(m.store, m.conversations, conv.ID),
		m.spinner.Tick,
	)
}

// SettleTurn applies a completed turn to its conversation.
func (m *Model) SettleTurn(msg turnSettledMsg) tea.Cmd {
	conv := m.findConversation(msg.ConversationID)
	if conv == nil {
		return nil
	}
	delete(m.sending, conv.ID)

	if msg.Result.Reasoning != "" {
		conv.AddReasoningMessage(msg.Result.Reasoning)
	}
	conv.AddFinalAnswerMessage(msg.Result.Answer, msg.Result.UsedWebSearch)

	cmds := []tea.Cmd{saveSnapshotCmd(m.store, m.conversations, m.ActiveConversation().ID)}

	// Generate a title after the first exchange, while the title is still
	// the default.
	if conv.IsDefaultTitle() {
		if first := conv.FirstUserMessage(); first != "" {
			cmds = append(cmds, generateTitleCmd(m.runner, conv.ID, first))
		}
	}

	return tea.Batch(cmds...)
}

// FailTurn records a failed turn as an error message in its conversation.
func (m *Model) FailTurn(msg turnFailedMsg) tea.Cmd {
	conv := m.findConversation(msg.ConversationID)
	if conv == nil {
		return nil
	}
	delete(m.sending, conv.ID)

	conv.AddErrorMessage(errorPrefix + msg.Message)

	return saveSnapshotCmd(m.store, m.conversations, m.ActiveConversation().ID)
}

// ApplyTitle sets a generated title if the conversation still has the
// default one.
func (m *Model) ApplyTitle(msg titleGeneratedMsg) tea.Cmd {
	conv := m.findConversation(msg.ConversationID)
	if conv == nil || !conv.IsDefaultTitle() {
		return nil
	}
	conv.SetTitle(msg.Title)
	return saveSnapshotCmd(m.store, m.conversations, m.ActiveConversation().ID)
}

// NewConversation opens a fresh conversation and switches to it.
func (m *Model) NewConversation() tea.Cmd {
	conv := model.NewConversation()
	m.conversations = append(m.conversations, conv)
	m.active = len(m.conversations) - 1
	m.statusMsg = ""
	return saveSnapshotCmd(m.store, m.conversations, conv.ID)
}

// ClearConversation removes all messages from the active conversation.
// The conversation itself and its title survive.
func (m *Model) ClearConversation() tea.Cmd {
	conv := m.ActiveConversation()
	if m.sending[conv.ID] {
		return nil
	}
	conv.ClearMessages()
	return saveSnapshotCmd(m.store, m.conversations, conv.ID)
}

// DeleteConversation removes the active conversation. The last remaining
// conversation is cleared instead of deleted.
func (m *Model) DeleteConversation() tea.Cmd {
	conv := m.ActiveConversation()
	if m.sending[conv.ID] {
		return nil
	}

	if len(m.conversations) == 1 {
		return m.ClearConversation()
	}

	m.conversations = append(m.conversations[:m.active], m.conversations[m.active+1:]...)
	if m.active >= len(m.conversations) {
		m.active = len(m.conversations) - 1
	}
	return saveSnapshotCmd(m.store, m.conversations, m.ActiveConversation().ID)
}

// NextConversation cycles to the next open conversation.
func (m *Model) NextConversation() tea.Cmd {
	if len(m.conversations) < 2 {
		return nil
	}
	m.active = (m.active + 1) % len(m.conversations)
	return saveSnapshotCmd(m.store, m.conversations, m.ActiveConversation().ID)
}

// ToggleSearchOverride cycles the search mode: automatic, forced on,
// forced off.
func (m *Model) ToggleSearchOverride() {
	switch {
	case m.searchOverride == nil:
		on := true
		m.searchOverride = &on
	case *m.searchOverride:
		off := false
		m.searchOverride = &off
	default:
		m.searchOverride = nil
	}
}

// SearchMode describes the current search override for the status bar.
func (m *Model) SearchMode() string {
	switch {
	case m.searchOverride == nil:
		return "تلقائي"
	case *m.searchOverride:
		return "مفعل"
	default:
		return "معطل"
	}
}

// findConversation locates a conversation by ID.
func (m *Model) findConversation(id string) *model.Conversation {
	for _, c := range m.conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}
