// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"strings"

	"github.com/morganforge/tafakkur/internal/apiclient"
	"github.com/morganforge/tafakkur/internal/model"
	"github.com/morganforge/tafakkur/internal/orchestrator"
	"github.com/morganforge/tafakkur/internal/util"
)

// titlePrompt asks the model for a short conversation title.
const titlePrompt = "أنشئ عنواناً مختصراً (3-5 كلمات) للمحادثة التالية:\n\n"

// titleMaxSourceRunes caps how much of the first message is sent along.
const titleMaxSourceRunes = 200

// titleMaxTokens keeps title generation cheap.
const titleMaxTokens = 100

// TurnResult is a completed reasoning turn as the UI consumes it.
type TurnResult struct {
	Answer        string
	Reasoning     string
	UsedWebSearch bool
	SearchSummary string
}

// TurnRunner executes reasoning turns. The UI is agnostic to whether
// turns run in-process or against a remote server.
type TurnRunner interface {
	Run(ctx context.Context, message string, history []model.HistoryMessage, searchRequired *bool, maxTokens int) (*TurnResult, error)
}

// historyToRequest converts conversation history to the wire projection.
func historyToRequest(history []model.HistoryMessage) []orchestrator.HistoryMessage {
	if len(history) == 0 {
		return nil
	}
	out := make([]orchestrator.HistoryMessage, 0, len(history))
	for _, h := range history {
		out = append(out, orchestrator.HistoryMessage{
			Role:    h.Role.String(),
			Content: h.Content,
		})
	}
	return out
}

// ===== LOCAL RUNNER =====

// LocalRunner executes turns in-process through the orchestrator.
type LocalRunner struct {
	Orch *orchestrator.Orchestrator
}

func (r *LocalRunner) Run(ctx context.Context, message string, history []model.HistoryMessage, searchRequired *bool, maxTokens int) (*TurnResult, error) {
	result, err := r.Orch.Handle(ctx, orchestrator.Request{
		Message:        message,
		History:        historyToRequest(history),
		SearchRequired: searchRequired,
		MaxTokens:      maxTokens,
	})
	if err != nil {
		return nil, err
	}
	return &TurnResult{
		Answer:        result.FinalAnswer,
		Reasoning:     result.Reasoning,
		UsedWebSearch: result.UsedWebSearch,
		SearchSummary: result.SearchSummary,
	}, nil
}

// ===== REMOTE RUNNER =====

// RemoteRunner executes turns against a running server.
type RemoteRunner struct {
	Client *apiclient.Client
}

func (r *RemoteRunner) Run(ctx context.Context, message string, history []model.HistoryMessage, searchRequired *bool, maxTokens int) (*TurnResult, error) {
	resp, err := r.Client.SendMessage(ctx, apiclient.SendRequest{
		Message:             message,
		ConversationHistory: historyToRequest(history),
		SearchRequired:      searchRequired,
		MaxTokens:           maxTokens,
	})
	if err != nil {
		return nil, err
	}
	return &TurnResult{
		Answer:        resp.Response,
		Reasoning:     resp.Reasoning,
		UsedWebSearch: resp.IsWebSearch,
		SearchSummary: resp.SearchData,
	}, nil
}

// ===== TITLE GENERATION =====

// generateTitle asks the runner for a short title based on the first user
// message. Search is always off and token budget minimal.
func generateTitle(ctx context.Context, runner TurnRunner, firstMessage string) (string, error) {
	source := util.TruncateRunes(firstMessage, titleMaxSourceRunes)

	noSearch := false
	result, err := runner.Run(ctx, titlePrompt+source, nil, &noSearch, titleMaxTokens)
	if err != nil {
		return "", err
	}
	return cleanTitle(result.Answer), nil
}

// cleanTitle normalizes a model-produced title for display.
func cleanTitle(raw string) string {
	title := strings.NewReplacer("\"", "", "'", "", "«", "", "»", "").Replace(raw)
	title = strings.ReplaceAll(title, "\n", " ")
	title = util.CollapseSpaces(title)
	return util.TruncateRunesNoEllipsis(title, 50)
}
