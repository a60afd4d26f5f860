// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/tafakkur/internal/util"
)

// View renders the full screen: header, scrollback, input, status bar.
func (m *Model) View() string {
	if !m.ready {
		return "جار التحميل..."
	}

	return strings.Join([]string{
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	}, "\n")
}

// renderHeader shows the conversation title and position.
func (m *Model) renderHeader() string {
	conv := m.ActiveConversation()

	title := util.TruncateWidth(conv.Title, m.width-20)
	position := fmt.Sprintf("%d/%d", m.active+1, len(m.conversations))

	line := m.theme.HeaderTitle.Render(title) +
		"  " +
		m.theme.HeaderSubtitle.Render(position)
	return m.theme.Header.Width(m.width - 2).Render(line)
}

// renderInput shows the input line, or the spinner while a turn runs.
func (m *Model) renderInput() string {
	if m.IsSending() {
		status := m.theme.Spinner.Render(m.spinner.View()) +
			" " +
			m.theme.StatusText.Render("جار التفكير...")
		return m.theme.InputContainer.Width(m.width - 2).Render(status)
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

// renderStatusBar shows shortcuts, search mode, and transient status.
func (m *Model) renderStatusBar() string {
	shortcuts := []string{
		m.theme.ShortcutKey.Render("Enter") + m.theme.ShortcutDesc.Render(" إرسال"),
		m.theme.ShortcutKey.Render("^N") + m.theme.ShortcutDesc.Render(" جديدة"),
		m.theme.ShortcutKey.Render("Tab") + m.theme.ShortcutDesc.Render(" تبديل"),
		m.theme.ShortcutKey.Render("^L") + m.theme.ShortcutDesc.Render(" مسح"),
		m.theme.ShortcutKey.Render("^S") + m.theme.ShortcutDesc.Render(" بحث"),
		m.theme.ShortcutKey.Render("^C") + m.theme.ShortcutDesc.Render(" خروج"),
	}

	searchStyle := m.theme.SearchOff
	if m.searchOverride != nil && *m.searchOverride {
		searchStyle = m.theme.SearchOn
	}
	search := searchStyle.Render("البحث: " + m.SearchMode())

	left := strings.Join(shortcuts, "  ")
	right := search
	if m.statusMsg != "" {
		right = m.theme.StatusText.Render(m.statusMsg) + "  " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
