// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/tafakkur/internal/model"
	"github.com/morganforge/tafakkur/internal/segment"
)

// Arabic labels shown above message bubbles.
const (
	labelUser      = "أنت"
	labelAssistant = "المساعد"
	labelReasoning = "التفكير العميق"
	searchBadge    = "🔍 تم البحث في الويب"
)

// renderConversation renders the active conversation's scrollback.
func (m *Model) renderConversation() string {
	conv := m.ActiveConversation()
	if conv.MessageCount() == 0 {
		return m.theme.StatusText.Render("ابدأ محادثة جديدة بكتابة رسالتك أدناه")
	}

	var blocks []string
	for _, msg := range conv.Messages {
		blocks = append(blocks, m.renderMessage(msg))
	}
	return strings.Join(blocks, "\n\n")
}

// renderMessage renders one message bubble with its role label.
func (m *Model) renderMessage(msg *model.Message) string {
	bubbleWidth := m.width - 10
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	body := m.renderContent(msg.Content, bubbleWidth)

	switch {
	case msg.IsError:
		return m.theme.ErrorBubble.MaxWidth(bubbleWidth).Render(body)

	case msg.IsReasoning:
		header := m.theme.ReasoningHeader.Render(labelReasoning)
		bubble := m.theme.ReasoningBubble.MaxWidth(bubbleWidth).Render(body)
		return lipgloss.JoinVertical(lipgloss.Right, header, bubble)

	case msg.Role == model.RoleUser:
		header := m.theme.RoleLabel.Render(labelUser)
		bubble := m.theme.UserBubble.MaxWidth(bubbleWidth).Render(body)
		return lipgloss.JoinVertical(lipgloss.Right, header, bubble)

	default:
		header := m.theme.RoleLabel.Render(labelAssistant)
		if msg.IsWebSearch {
			header += "  " + m.theme.SearchBadge.Render(searchBadge)
		}
		bubble := m.theme.AssistantBubble.MaxWidth(bubbleWidth).Render(body)
		return lipgloss.JoinVertical(lipgloss.Left, header, bubble)
	}
}

// renderContent renders message text, highlighting fenced code blocks and
// underlining links in prose.
func (m *Model) renderContent(content string, width int) string {
	segments := segment.Split(content)

	var parts []string
	for _, seg := range segments {
		switch seg.Kind {
		case segment.KindCode:
			parts = append(parts, renderCode(seg.Text, seg.Language))
		default:
			parts = append(parts, m.renderProse(seg.Text, width))
		}
	}
	return strings.Join(parts, "\n")
}

// renderProse wraps prose and styles embedded links.
func (m *Model) renderProse(text string, width int) string {
	var b strings.Builder
	for _, part := range segment.SplitLinks(text) {
		if part.IsLink {
			b.WriteString(m.theme.Link.Render(part.Text))
		} else {
			b.WriteString(part.Text)
		}
	}
	return lipgloss.NewStyle().Width(width - 6).Render(b.String())
}

// renderCode applies chroma syntax highlighting for terminal output.
func renderCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
