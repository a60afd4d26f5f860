// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/morganforge/tafakkur/internal/analyzer"
	"github.com/morganforge/tafakkur/internal/deepseek"
	"github.com/morganforge/tafakkur/internal/search"
)

// Request limits.
const (
	// MaxMessageRunes caps the user message length.
	MaxMessageRunes = 10000

	// MaxHistoryTurns is how many trailing history entries enter the
	// prompt context.
	MaxHistoryTurns = 6

	// MaxTokensCeiling bounds the per-request completion budget.
	MaxTokensCeiling = 8192
)

// SearchUsedSummary marks a result whose answer drew on web hits.
const SearchUsedSummary = "تم استخدام نتائج البحث"

// Validation messages.
const (
	msgMessageRequired  = "الرسالة مطلوبة ويجب أن تكون نصية غير فارغة"
	msgMessageTooLong   = "الرسالة طويلة جداً (الحد الأقصى 10000 حرف)"
	msgMaxTokensInvalid = "حد الرموز يجب أن يكون بين 0 و 8192"
)

// CompletionProvider produces raw model output for a composed prompt.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	IsConfigured() bool
}

// SearchProvider fetches formatted web context for extracted keywords.
type SearchProvider interface {
	Search(ctx context.Context, keywords string) (string, error)
	IsConfigured() bool
}

// HistoryMessage is one prior turn sent along with the current message.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single chat turn.
type Request struct {
	Message string
	History []HistoryMessage

	// SearchRequired forces the search decision when non-nil; nil lets
	// the trigger analyzer decide.
	SearchRequired *bool

	// MaxTokens overrides the completion budget when positive.
	MaxTokens int
}

// Result is the structured outcome of a settled turn.
type Result struct {
	// FinalAnswer is never empty; an empty parsed answer is replaced by
	// the fallback placeholder.
	FinalAnswer string

	// Reasoning may be empty when the model skipped the format.
	Reasoning string

	// UsedWebSearch reports that search was indicated and the adapter
	// configured, regardless of whether hits came back.
	UsedWebSearch bool

	// SearchSummary is SearchUsedSummary iff at least one hit fed the
	// prompt, else "".
	SearchSummary string

	Timestamp time.Time
}

// Orchestrator wires the pipeline components for chat turns.
type Orchestrator struct {
	completion CompletionProvider
	search     SearchProvider
	logger     *log.Logger
}

// New creates an orchestrator over the given adapters. logger may be nil,
// which uses the standard logger.
func New(completion CompletionProvider, searchProvider SearchProvider, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		completion: completion,
		search:     searchProvider,
		logger:     logger,
	}
}

// CompletionConfigured reports whether the completion adapter has
// credentials. Used by health reporting.
func (o *Orchestrator) CompletionConfigured() bool {
	return o.completion.IsConfigured()
}

// SearchConfigured reports whether the search adapter has credentials.
func (o *Orchestrator) SearchConfigured() bool {
	return o.search.IsConfigured()
}

// Handle runs one chat turn through the pipeline. Failures are returned
// as *Error; the UI and HTTP layers surface Message and HTTPStatus
// directly.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (*Result, error) {
	if details := validate(req); len(details) > 0 {
		return nil, newValidationError(details)
	}

	message := strings.TrimSpace(req.Message)

	// Search decision: explicit flag wins, otherwise the analyzer.
	searchIndicated := analyzer.ShouldSearch(message)
	if req.SearchRequired != nil {
		searchIndicated = *req.SearchRequired
	}

	usedWebSearch := searchIndicated && o.search.IsConfigured()

	webData := ""
	if usedWebSearch {
		keywords := analyzer.ExtractKeywords(message)
		if keywords != "" {
			data, err := o.search.Search(ctx, keywords)
			if err != nil {
				// Search never fails a turn.
				o.logger.Printf("SEARCH_FAILED | keywords=%q error=%v", keywords, err)
			} else {
				webData = data
			}
		}
	}

	prompt := composePrompt(message, webData, req.History)

	raw, err := o.completion.Complete(ctx, prompt, req.MaxTokens)
	if err != nil {
		o.logger.Printf("COMPLETION_FAILED | error=%v", err)
		return nil, classifyCompletionError(err)
	}

	reply := deepseek.ParseReply(raw)
	finalAnswer := reply.FinalAnswer
	if finalAnswer == "" {
		finalAnswer = deepseek.FallbackAnswer
	}

	summary := ""
	if webData != "" && webData != search.NoResults {
		summary = SearchUsedSummary
	}

	return &Result{
		FinalAnswer:   finalAnswer,
		Reasoning:     reply.Reasoning,
		UsedWebSearch: usedWebSearch,
		SearchSummary: summary,
		Timestamp:     time.Now(),
	}, nil
}

// validate collects every request problem rather than stopping at the
// first, so clients can show the full list.
func validate(req Request) []string {
	var details []string

	if strings.TrimSpace(req.Message) == "" {
		details = append(details, msgMessageRequired)
	} else if len([]rune(req.Message)) > MaxMessageRunes {
		details = append(details, msgMessageTooLong)
	}

	if req.MaxTokens < 0 || req.MaxTokens > MaxTokensCeiling {
		details = append(details, msgMaxTokensInvalid)
	}

	return details
}

// composePrompt builds the completion prompt: search context first, then
// the trailing conversation context wrapping the (possibly augmented)
// current message.
func composePrompt(message, webData string, history []HistoryMessage) string {
	prompt := message

	if webData != "" {
		prompt = fmt.Sprintf(
			"[معلومات من البحث]:\n%s\n\n[السؤال الأصلي]: %s\n\n[تعليمات]: استخدم المعلومات من البحث لتقديم إجابة دقيقة ومحدثة. إذا لم تجد معلومات كافية في نتائج البحث، اذكر ذلك واعتمد على معرفتك العامة.",
			webData, message,
		)
	}

	if len(history) > 0 {
		recent := history
		if len(recent) > MaxHistoryTurns {
			recent = recent[len(recent)-MaxHistoryTurns:]
		}

		lines := make([]string, 0, len(recent))
		for _, turn := range recent {
			label := "المساعد"
			if turn.Role == "user" {
				label = "المستخدم"
			}
			lines = append(lines, label+": "+turn.Content)
		}

		prompt = fmt.Sprintf(
			"[سياق المحادثة السابقة]:\n%s\n\n[الرسالة الحالية]: %s",
			strings.Join(lines, "\n"), prompt,
		)
	}

	return prompt
}
