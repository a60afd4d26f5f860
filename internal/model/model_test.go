// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
)

func TestNewConversation_Defaults(t *testing.T) {
	conv := NewConversation()

	if conv.ID == "" {
		t.Error("Expected generated ID")
	}
	if conv.Title != DefaultTitle {
		t.Errorf("Title: got %q, want %q", conv.Title, DefaultTitle)
	}
	if !conv.IsDefaultTitle() {
		t.Error("IsDefaultTitle should be true for a new conversation")
	}
	if len(conv.Messages) != 0 {
		t.Errorf("Expected no messages, got %d", len(conv.Messages))
	}
}

func TestMessageIDs_StrictlyIncreasing(t *testing.T) {
	conv := NewConversation()

	ids := []int64{
		conv.AddUserMessage("السلام عليكم").ID,
		conv.AddReasoningMessage("تفكير").ID,
		conv.AddFinalAnswerMessage("وعليكم السلام", false).ID,
		conv.AddErrorMessage("⚠️ فشل").ID,
	}

	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("IDs not strictly increasing: %v", ids)
		}
	}
}

func TestMessageIDs_MonotonicAcrossClear(t *testing.T) {
	conv := NewConversation()

	before := conv.AddUserMessage("أولاً").ID
	conv.ClearMessages()
	after := conv.AddUserMessage("ثانياً").ID

	if after <= before {
		t.Errorf("ID after clear (%d) should exceed ID before (%d)", after, before)
	}
	if conv.MessageCount() != 1 {
		t.Errorf("Expected 1 message after clear+add, got %d", conv.MessageCount())
	}
}

func TestMessageIDs_RebuiltFromLegacySnapshot(t *testing.T) {
	// Conversations loaded from older snapshots have NextID == 0.
	conv := &Conversation{
		Messages: []*Message{
			{ID: 4, Role: RoleUser, Content: "مرحبا"},
			{ID: 7, Role: RoleAssistant, Content: "أهلاً", IsFinalAnswer: true},
		},
	}

	msg := conv.AddUserMessage("تابع")
	if msg.ID != 8 {
		t.Errorf("Expected rebuilt ID 8, got %d", msg.ID)
	}
}

func TestHistory_ExcludesReasoningAndErrors(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("ما هي عاصمة فرنسا؟")
	conv.AddReasoningMessage("المستخدم يسأل عن عاصمة فرنسا...")
	conv.AddFinalAnswerMessage("عاصمة فرنسا هي باريس.", false)
	conv.AddErrorMessage("⚠️ فشل في معالجة طلبك: خطأ")

	history := conv.History()
	if len(history) != 2 {
		t.Fatalf("Expected 2 contextual messages, got %d", len(history))
	}
	if history[0].Role != RoleUser || history[1].Role != RoleAssistant {
		t.Errorf("Unexpected roles: %v, %v", history[0].Role, history[1].Role)
	}
	if history[1].Content != "عاصمة فرنسا هي باريس." {
		t.Errorf("Unexpected assistant content: %q", history[1].Content)
	}
}

func TestFinalAnswerFlags(t *testing.T) {
	conv := NewConversation()
	msg := conv.AddFinalAnswerMessage("إجابة", true)

	if !msg.IsFinalAnswer {
		t.Error("IsFinalAnswer not set")
	}
	if !msg.IsWebSearch {
		t.Error("IsWebSearch not set")
	}
	if msg.IsReasoning || msg.IsError {
		t.Error("Unexpected flags set")
	}
}

func TestSetTitle(t *testing.T) {
	conv := NewConversation()

	conv.SetTitle("  أخبار التقنية اليوم  ")
	if conv.Title != "أخبار التقنية اليوم" {
		t.Errorf("SetTitle did not trim: got %q", conv.Title)
	}

	conv.SetTitle("   ")
	if conv.Title != "أخبار التقنية اليوم" {
		t.Errorf("Whitespace-only title should be ignored, got %q", conv.Title)
	}
}

func TestSetTitle_CapsAt50Runes(t *testing.T) {
	conv := NewConversation()
	long := ""
	for i := 0; i < 60; i++ {
		long += "ع"
	}
	conv.SetTitle(long)
	if got := len([]rune(conv.Title)); got != 50 {
		t.Errorf("Title length: got %d runes, want 50", got)
	}
}

func TestFirstUserMessage(t *testing.T) {
	conv := NewConversation()
	if got := conv.FirstUserMessage(); got != "" {
		t.Errorf("Expected empty for new conversation, got %q", got)
	}

	conv.AddReasoningMessage("تفكير")
	conv.AddUserMessage("السؤال الأول")
	conv.AddUserMessage("السؤال الثاني")

	if got := conv.FirstUserMessage(); got != "السؤال الأول" {
		t.Errorf("FirstUserMessage: got %q", got)
	}
}

func TestRoleContextLabel(t *testing.T) {
	if RoleUser.ContextLabel() != "المستخدم" {
		t.Errorf("user label: got %q", RoleUser.ContextLabel())
	}
	if RoleAssistant.ContextLabel() != "المساعد" {
		t.Errorf("assistant label: got %q", RoleAssistant.ContextLabel())
	}
}

func TestPruneOldMessages(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < MaxMessages+10; i++ {
		conv.AddUserMessage("رسالة")
	}
	if conv.MessageCount() != MaxMessages {
		t.Errorf("Expected %d messages after pruning, got %d", MaxMessages, conv.MessageCount())
	}
}
