// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/morganforge/tafakkur/internal/config"
	"github.com/morganforge/tafakkur/internal/model"
	"github.com/morganforge/tafakkur/internal/ui"
)

// chatPrompt is the REPL input prompt.
const chatPrompt = "أنت> "

// chatHistoryFile stores REPL input history under the config directory.
const chatHistoryFile = "chat_history"

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatInput provides input history and line editing for interactive chat.
// USABILITY: supports arrow keys for history navigation.
type ChatInput struct {
	line        *liner.State
	historyFile string
}

// NewChatInput creates a ChatInput with history loaded from the config
// directory.
func NewChatInput() *ChatInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}

	c := &ChatInput{
		line:        line,
		historyFile: filepath.Join(dir, chatHistoryFile),
	}
	c.loadHistory()
	return c
}

func (c *ChatInput) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with history navigation.
func (c *ChatInput) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// saveHistory persists input history with owner-only permissions.
func (c *ChatInput) saveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatInput) Close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatSession holds the state for an interactive chat REPL.
type ChatSession struct {
	runner       ui.TurnRunner
	conversation *model.Conversation
	input        *ChatInput

	// searchOverride forces search on or off; nil follows the analyzer.
	searchOverride *bool
}

// NewChatSession creates a REPL session over the given runner.
func NewChatSession(runner ui.TurnRunner) *ChatSession {
	return &ChatSession{
		runner:       runner,
		conversation: model.NewConversation(),
		input:        NewChatInput(),
	}
}

// Run drives the REPL until /quit or EOF. Returns the exit code.
func (s *ChatSession) Run() int {
	defer s.input.Close()

	fmt.Println("مرحباً! اكتب سؤالك أو /help لعرض الأوامر")
	fmt.Println()

	for {
		input, err := s.input.ReadInput(chatPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, liner.ErrInvalidPrompt) {
				return 0
			}
			// EOF or terminal failure ends the session cleanly.
			return 0
		}

		text := strings.TrimSpace(input)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			if quit := s.handleCommand(text); quit {
				return 0
			}
			continue
		}

		s.runTurn(text)
	}
}

// handleCommand executes a slash command. Returns true to quit.
func (s *ChatSession) handleCommand(cmd string) bool {
	fields := strings.Fields(cmd)

	switch fields[0] {
	case "/quit", "/exit":
		fmt.Println("مع السلامة!")
		return true

	case "/clear":
		s.conversation.ClearMessages()
		fmt.Println("تم مسح المحادثة")

	case "/new":
		s.conversation = model.NewConversation()
		fmt.Println("بدأت محادثة جديدة")

	case "/search":
		s.handleSearchCommand(fields)

	case "/help":
		s.printHelp()

	default:
		fmt.Printf("أمر غير معروف: %s (جرب /help)\n", fields[0])
	}
	return false
}

// handleSearchCommand switches the search mode: on, off, or auto.
func (s *ChatSession) handleSearchCommand(fields []string) {
	if len(fields) < 2 {
		fmt.Printf("وضع البحث الحالي: %s\n", s.searchModeName())
		return
	}

	switch fields[1] {
	case "on":
		on := true
		s.searchOverride = &on
		fmt.Println("تم تفعيل البحث في الويب")
	case "off":
		off := false
		s.searchOverride = &off
		fmt.Println("تم تعطيل البحث في الويب")
	case "auto":
		s.searchOverride = nil
		fmt.Println("البحث في الويب تلقائي")
	default:
		fmt.Println("الاستخدام: /search on|off|auto")
	}
}

func (s *ChatSession) searchModeName() string {
	switch {
	case s.searchOverride == nil:
		return "تلقائي"
	case *s.searchOverride:
		return "مفعل"
	default:
		return "معطل"
	}
}

func (s *ChatSession) printHelp() {
	fmt.Println("الأوامر المتاحة:")
	fmt.Println("  /search on|off|auto  التحكم في البحث في الويب")
	fmt.Println("  /clear               مسح رسائل المحادثة")
	fmt.Println("  /new                 بدء محادثة جديدة")
	fmt.Println("  /quit                إنهاء الجلسة")
}

// runTurn sends one message and prints the reply.
func (s *ChatSession) runTurn(text string) {
	// Capture history before appending so the turn doesn't see itself.
	history := s.conversation.History()
	s.conversation.AddUserMessage(text)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	fmt.Println("جار التفكير...")

	result, err := s.runner.Run(ctx, text, history, s.searchOverride, 0)
	if err != nil {
		msg := ui.ErrorText(err)
		s.conversation.AddErrorMessage(msg)
		printError(err)
		return
	}

	if result.Reasoning != "" {
		s.conversation.AddReasoningMessage(result.Reasoning)
	}
	s.conversation.AddFinalAnswerMessage(result.Answer, result.UsedWebSearch)

	fmt.Println()
	displayResponse(result.Answer)
	if result.UsedWebSearch && IsStdoutTTY() {
		fmt.Println(searchNoteStyle.Render("🔍 تم الاستعانة بنتائج البحث في الويب"))
	}
	fmt.Println()
}
