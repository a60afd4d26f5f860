// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/tafakkur/internal/ui"
	"github.com/morganforge/tafakkur/internal/ui/styles"
)

// askTimeout bounds a one-shot question.
const askTimeout = 90 * time.Second

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the global glamour renderer for markdown output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(DefaultTerminalWidth),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse prints a response, with markdown rendering only when
// stdout is a TTY so piped output stays clean.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Println(response)
	}
}

// =============================================================================
// STYLES
// =============================================================================

var (
	reasoningLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(styles.Indigo)

	reasoningStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Italic(true)

	searchNoteStyle = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)
)

// =============================================================================
// ASK COMMAND
// =============================================================================

// AskOptions controls the one-shot ask command.
type AskOptions struct {
	// ShowReasoning prints the reasoning section before the answer.
	ShowReasoning bool

	// ForceSearch forces web search on (true) or off (false); nil lets
	// the analyzer decide.
	ForceSearch *bool
}

// Ask runs one question through the runner and prints the reply.
// Returns a non-zero exit code on failure.
func Ask(runner ui.TurnRunner, question string, opts AskOptions) int {
	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	result, err := runner.Run(ctx, question, nil, opts.ForceSearch, 0)
	if err != nil {
		printError(err)
		return 1
	}

	if opts.ShowReasoning && result.Reasoning != "" {
		if IsStdoutTTY() {
			fmt.Println(reasoningLabelStyle.Render("التفكير العميق:"))
			fmt.Println(reasoningStyle.Render(result.Reasoning))
			fmt.Println()
		} else {
			fmt.Println("التفكير العميق:")
			fmt.Println(result.Reasoning)
			fmt.Println()
		}
	}

	displayResponse(result.Answer)

	if result.UsedWebSearch && IsStdoutTTY() {
		fmt.Println(searchNoteStyle.Render("🔍 تم الاستعانة بنتائج البحث في الويب"))
	}
	return 0
}

// printError writes a turn failure to stderr in Arabic.
func printError(err error) {
	msg := ui.ErrorText(err)
	if IsStdoutTTY() {
		fmt.Fprintln(os.Stderr, errorStyle.Render("خطأ: "+msg))
	} else {
		fmt.Fprintln(os.Stderr, "خطأ: "+msg)
	}
}
