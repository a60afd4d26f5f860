// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/tafakkur/internal/apiclient"
	"github.com/morganforge/tafakkur/internal/model"
	"github.com/morganforge/tafakkur/internal/orchestrator"
	"github.com/morganforge/tafakkur/internal/storage"
)

// turnTimeout bounds a full reasoning turn from the UI.
const turnTimeout = 90 * time.Second

// runTurnCmd executes one reasoning turn off the update loop.
func runTurnCmd(runner TurnRunner, convID, message string, history []model.HistoryMessage, searchRequired *bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()

		result, err := runner.Run(ctx, message, history, searchRequired, 0)
		if err != nil {
			return turnFailedMsg{
				ConversationID: convID,
				Message:        ErrorText(err),
			}
		}
		return turnSettledMsg{ConversationID: convID, Result: result}
	}
}

// generateTitleCmd asks the runner for a conversation title. Failures are
// silent; the default title stays.
func generateTitleCmd(runner TurnRunner, convID, firstMessage string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		title, err := generateTitle(ctx, runner, firstMessage)
		if err != nil || title == "" {
			return nil
		}
		return titleGeneratedMsg{ConversationID: convID, Title: title}
	}
}

// saveSnapshotCmd persists the conversation list in the background.
func saveSnapshotCmd(store *storage.Store, conversations []*model.Conversation, activeID string) tea.Cmd {
	if store == nil {
		return nil
	}
	// Snapshot the slice now so later mutations don't race the save.
	convs := make([]*model.Conversation, len(conversations))
	copy(convs, conversations)

	return func() tea.Msg {
		err := store.Save(&storage.Snapshot{
			Conversations: convs,
			LastActiveID:  activeID,
		})
		return snapshotSavedMsg{Err: err}
	}
}

// ErrorText extracts the Arabic message to show for a turn failure.
func ErrorText(err error) string {
	var orchErr *orchestrator.Error
	if errors.As(err, &orchErr) {
		return orchErr.Message
	}
	return apiclient.UserMessage(err)
}
