// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts the input cursor blink.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update is the Bubble Tea update loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "enter":
			if cmd := m.Submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}
			m.refreshViewport(true)
			return m, tea.Batch(cmds...)

		case "ctrl+n":
			cmds = append(cmds, m.NewConversation())
			m.refreshViewport(true)
			return m, tea.Batch(cmds...)

		case "ctrl+l":
			cmds = append(cmds, m.ClearConversation())
			m.refreshViewport(true)
			return m, tea.Batch(cmds...)

		case "ctrl+d":
			cmds = append(cmds, m.DeleteConversation())
			m.refreshViewport(true)
			return m, tea.Batch(cmds...)

		case "tab":
			cmds = append(cmds, m.NextConversation())
			m.refreshViewport(true)
			return m, tea.Batch(cmds...)

		case "ctrl+s":
			m.ToggleSearchOverride()
			return m, nil

		case "pgup":
			m.viewport.HalfViewUp()
			return m, nil

		case "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.IsSending() {
			return m, cmd
		}
		return m, nil

	case turnSettledMsg:
		cmds = append(cmds, m.SettleTurn(msg))
		m.refreshViewport(true)
		return m, tea.Batch(cmds...)

	case turnFailedMsg:
		cmds = append(cmds, m.FailTurn(msg))
		m.refreshViewport(true)
		return m, tea.Batch(cmds...)

	case titleGeneratedMsg:
		cmds = append(cmds, m.ApplyTitle(msg))
		return m, tea.Batch(cmds...)

	case snapshotSavedMsg:
		if msg.Err != nil {
			m.statusMsg = "تعذر حفظ المحادثات"
		}
		return m, nil
	}

	// Forward remaining messages to the focused components.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// resize lays out the viewport and input for the new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 3
	inputHeight := 3
	statusHeight := 1
	vpHeight := height - headerHeight - inputHeight - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - 6

	m.refreshViewport(false)
}

// refreshViewport re-renders the scrollback. When follow is true the view
// jumps to the bottom, as after a new message.
func (m *Model) refreshViewport(follow bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderConversation())
	if follow {
		m.viewport.GotoBottom()
	}
}
