// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/tafakkur/internal/model"
	"github.com/morganforge/tafakkur/internal/storage"
)

// fakeRunner records the last request and returns a canned result.
type fakeRunner struct {
	result      *TurnResult
	err         error
	lastMessage string
	lastHistory []model.HistoryMessage
	lastSearch  *bool
	calls       int
}

func (f *fakeRunner) Run(ctx context.Context, message string, history []model.HistoryMessage, searchRequired *bool, maxTokens int) (*TurnResult, error) {
	f.calls++
	f.lastMessage = message
	f.lastHistory = history
	f.lastSearch = searchRequired
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// runCmd executes a command synchronously, unwrapping batches.
func runCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmd(c)
		}
	}
}

func newTestModel(t *testing.T, runner TurnRunner) *Model {
	t.Helper()
	store := storage.NewStore(filepath.Join(t.TempDir(), "conversations.json"))
	return New(runner, store)
}

func TestNew_StartsWithFreshConversation(t *testing.T) {
	m := newTestModel(t, &fakeRunner{})

	if m.ConversationCount() != 1 {
		t.Fatalf("ConversationCount() = %d, want 1", m.ConversationCount())
	}
	if !m.ActiveConversation().IsDefaultTitle() {
		t.Error("fresh conversation should carry the default title")
	}
	if m.IsSending() {
		t.Error("fresh model should not be sending")
	}
}

func TestSubmit_AppendsUserMessageAndMarksSending(t *testing.T) {
	runner := &fakeRunner{result: &TurnResult{Answer: "رد"}}
	m := newTestModel(t, runner)

	m.input.SetValue("ما هي عاصمة مصر؟")
	cmd := m.Submit()

	if cmd == nil {
		t.Fatal("Submit() should return a command")
	}
	if !m.IsSending() {
		t.Error("conversation should be sending after submit")
	}

	conv := m.ActiveConversation()
	if conv.MessageCount() != 1 {
		t.Fatalf("MessageCount() = %d, want 1", conv.MessageCount())
	}
	if conv.Messages[0].Role != model.RoleUser {
		t.Errorf("Role = %q", conv.Messages[0].Role)
	}
	if m.input.Value() != "" {
		t.Error("input should be cleared after submit")
	}
}

func TestSubmit_IgnoredWhileSending(t *testing.T) {
	m := newTestModel(t, &fakeRunner{result: &TurnResult{Answer: "رد"}})

	m.input.SetValue("السؤال الأول")
	if cmd := m.Submit(); cmd == nil {
		t.Fatal("first submit should produce a command")
	}

	m.input.SetValue("السؤال الثاني")
	if cmd := m.Submit(); cmd != nil {
		t.Error("submit while sending should be a no-op")
	}
	if m.ActiveConversation().MessageCount() != 1 {
		t.Errorf("MessageCount() = %d, want 1", m.ActiveConversation().MessageCount())
	}
}

func TestSubmit_IgnoresEmptyInput(t *testing.T) {
	m := newTestModel(t, &fakeRunner{})

	m.input.SetValue("   ")
	if cmd := m.Submit(); cmd != nil {
		t.Error("whitespace-only input should be a no-op")
	}
}

func TestSettleTurn_AppendsReasoningAndAnswer(t *testing.T) {
	m := newTestModel(t, &fakeRunner{})
	conv := m.ActiveConversation()

	m.input.SetValue("سؤال")
	m.Submit()

	m.SettleTurn(turnSettledMsg{
		ConversationID: conv.ID,
		Result: &TurnResult{
			Answer:        "الإجابة",
			Reasoning:     "خطوات التفكير",
			UsedWebSearch: true,
		},
	})

	if m.IsSending() {
		t.Error("conversation should be idle after settle")
	}
	if conv.MessageCount() != 3 {
		t.Fatalf("MessageCount() = %d, want 3", conv.MessageCount())
	}

	reasoning := conv.Messages[1]
	if !reasoning.IsReasoning || reasoning.Content != "خطوات التفكير" {
		t.Errorf("reasoning message = %+v", reasoning)
	}

	answer := conv.Messages[2]
	if !answer.IsFinalAnswer || !answer.IsWebSearch {
		t.Errorf("answer flags = %+v", answer)
	}
	if answer.ID <= reasoning.ID {
		t.Error("message IDs should be strictly increasing")
	}
}

func TestSettleTurn_NoReasoningMessageWhenEmpty(t *testing.T) {
	m := newTestModel(t, &fakeRunner{})
	conv := m.ActiveConversation()

	m.input.SetValue("سؤال")
	m.Submit()

	m.SettleTurn(turnSettledMsg{
		ConversationID: conv.ID,
		Result:         &TurnResult{Answer: "الإجابة"},
	})

	if conv.MessageCount() != 2 {
		t.Fatalf("MessageCount() = %d, want 2", conv.MessageCount())
	}
}

func TestFailTurn_AppendsErrorMessage(t *testing.T) {
	m := newTestModel(t, &fakeRunner{})
	conv := m.ActiveConversation()

	m.input.SetValue("سؤال")
	m.Submit()

	m.FailTurn(turnFailedMsg{
		ConversationID: conv.ID,
		Message:        "انتهت مهلة الاتصال - حاول مرة أخرى",
	})

	if m.IsSending() {
		t.Error("conversation should be idle after failure")
	}

	last := conv.Messages[conv.MessageCount()-1]
	if !last.IsError {
		t.Error("last message should be an error")
	}
	if !strings.HasPrefix(last.Content, errorPrefix) {
		t.Errorf("error content = %q", last.Content)
	}
	if !strings.Contains(last.Content, "انتهت مهلة الاتصال") {
		t.Errorf("error content missing cause: %q", last.Content)
	}
}

func TestFailTurn_ErrorExcludedFromHistory(t *testing.T) {
	m := newTestModel(t, &fakeRunner{})
	conv := m.ActiveConversation()

	m.input.SetValue("سؤال")
	m.Submit()
	m.FailTurn(turnFailedMsg{ConversationID: conv.ID, Message: "فشل"})

	for _, h := range conv.History() {
		if strings.Contains(h.Content, errorPrefix) {
			t.Error("error messages must not appear in history")
		}
	}
}

func TestApplyTitle_OnlyWhileDefault(t *testing.T) {
	m := newTestModel(t, &fakeRunner{})
	conv := m.ActiveConversation()

	m.ApplyTitle(titleGeneratedMsg{ConversationID: conv.ID, Title: "عنوان مولد"})
	if conv.Title != "عنوان مولد" {
		t.Fatalf("Title = %q", conv.Title)
	}

	// A second generated title must not overwrite a settled one.
	m.ApplyTitle(titleGeneratedMsg{ConversationID: conv.ID, Title: "عنوان آخر"})
	if conv.Title != "عنوان مولد" {
		t.Errorf("Title = %q, want unchanged", conv.Title)
	}
}

func TestNewConversation_SwitchesActive(t *testing.T) {
	m := newTestModel(t, &fakeRunner{})
	first := m.ActiveConversation()

	m.NewConversation()

	if m.ConversationCount() != 2 {
		t.Fatalf("ConversationCount() = %d, want 2", m.ConversationCount())
	}
	if m.ActiveConversation().ID == first.ID {
		t.Error("active conversation should be the new one")
	}
}

func TestSendingStatePerConversation(t *testing.T) {
	m := newTestModel(t, &fakeRunner{result: &TurnResult{Answer: "رد"}})

	m.input.SetValue("سؤال في الأولى")
	m.Submit()

	m.NewConversation()

	if m.IsSending() {
		t.Error("new conversation should not inherit the sending state")
	}

	m.input.SetValue("سؤال في الثانية")
	if cmd := m.Submit(); cmd == nil {
		t.Error("second conversation should accept a submit")
	}
}

func TestDeleteConversation_LastIsClearedNotDeleted(t *testing.T) {
	m := newTestModel(t, &fakeRunner{})
	conv := m.ActiveConversation()
	conv.AddUserMessage("رسالة")

	m.DeleteConversation()

	if m.ConversationCount() != 1 {
		t.Fatalf("ConversationCount() = %d, want 1", m.ConversationCount())
	}
	if m.ActiveConversation().MessageCount() != 0 {
		t.Error("last conversation should be cleared")
	}
}

func TestDeleteConversation_RemovesAndAdjustsActive(t *testing.T) {
	m := newTestModel(t, &fakeRunner{})
	m.NewConversation()
	deleted := m.ActiveConversation()

	m.DeleteConversation()

	if m.ConversationCount() != 1 {
		t.Fatalf("ConversationCount() = %d, want 1", m.ConversationCount())
	}
	if m.ActiveConversation().ID == deleted.ID {
		t.Error("deleted conversation should not remain active")
	}
}

func TestNextConversation_Cycles(t *testing.T) {
	m := newTestModel(t, &fakeRunner{})
	first := m.ActiveConversation()
	m.NewConversation()

	m.NextConversation()
	if m.ActiveConversation().ID != first.ID {
		t.Error("should cycle back to the first conversation")
	}
}

func TestToggleSearchOverride_Cycles(t *testing.T) {
	m := newTestModel(t, &fakeRunner{})

	if m.searchOverride != nil {
		t.Fatal("search override should start automatic")
	}

	m.ToggleSearchOverride()
	if m.searchOverride == nil || !*m.searchOverride {
		t.Error("first toggle should force search on")
	}
	if m.SearchMode() != "مفعل" {
		t.Errorf("SearchMode() = %q", m.SearchMode())
	}

	m.ToggleSearchOverride()
	if m.searchOverride == nil || *m.searchOverride {
		t.Error("second toggle should force search off")
	}

	m.ToggleSearchOverride()
	if m.searchOverride != nil {
		t.Error("third toggle should return to automatic")
	}
}

func TestSubmit_ForwardsSearchOverrideAndHistory(t *testing.T) {
	runner := &fakeRunner{result: &TurnResult{Answer: "رد"}}
	m := newTestModel(t, runner)
	conv := m.ActiveConversation()

	conv.AddUserMessage("سؤال سابق")
	conv.AddFinalAnswerMessage("إجابة سابقة", false)

	m.ToggleSearchOverride()
	m.input.SetValue("سؤال جديد")
	cmd := m.Submit()
	if cmd == nil {
		t.Fatal("Submit() should produce a command")
	}
	runCmd(cmd) // run the batched turn synchronously

	if runner.lastMessage != "سؤال جديد" {
		t.Errorf("message = %q", runner.lastMessage)
	}
	if runner.lastSearch == nil || !*runner.lastSearch {
		t.Error("search override should be forwarded")
	}
	// History captured before the optimistic append.
	if len(runner.lastHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(runner.lastHistory))
	}
	if runner.lastHistory[0].Content != "سؤال سابق" {
		t.Errorf("history[0] = %q", runner.lastHistory[0].Content)
	}
}

func TestGenerateTitle_CleansModelOutput(t *testing.T) {
	runner := &fakeRunner{result: &TurnResult{Answer: "\"عاصمة\nمصر\""}}

	title, err := generateTitle(context.Background(), runner, "ما هي عاصمة مصر؟")
	if err != nil {
		t.Fatalf("generateTitle() error = %v", err)
	}
	if title != "عاصمة مصر" {
		t.Errorf("title = %q", title)
	}
	if runner.lastSearch == nil || *runner.lastSearch {
		t.Error("title generation must not trigger search")
	}
	if !strings.HasPrefix(runner.lastMessage, titlePrompt) {
		t.Errorf("prompt = %q", runner.lastMessage)
	}
}

func TestGenerateTitle_PropagatesError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}

	if _, err := generateTitle(context.Background(), runner, "سؤال"); err == nil {
		t.Error("expected error")
	}
}
