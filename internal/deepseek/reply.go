// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package deepseek

import (
	"regexp"
	"strings"
)

// Section labels the system instruction asks the model to emit.
const (
	ReasoningLabel   = "[التفكير العميق]:"
	FinalAnswerLabel = "[الإجابة النهائية]:"
)

// FallbackAnswer replaces an empty final answer so callers never surface
// a blank reply.
const FallbackAnswer = "عذراً، لم أتمكن من تكوين إجابة مناسبة."

var (
	reasoningRe   = regexp.MustCompile(`(?s)\[التفكير العميق\]:\s*(.*?)\n\n\[الإجابة النهائية\]:`)
	finalAnswerRe = regexp.MustCompile(`(?s)\[الإجابة النهائية\]:\s*(.*)`)
)

// Reply is a model completion split into its labeled sections.
type Reply struct {
	Reasoning   string
	FinalAnswer string
}

// ParseReply splits raw model output into reasoning and final answer.
//
// When the final-answer label is missing, the whole trimmed text becomes
// the final answer and reasoning stays empty. Models drift from the
// requested format often enough that this path is ordinary, not an error.
func ParseReply(raw string) Reply {
	reasoning := ""
	if m := reasoningRe.FindStringSubmatch(raw); m != nil {
		reasoning = strings.TrimSpace(m[1])
	}

	finalAnswer := strings.TrimSpace(raw)
	if m := finalAnswerRe.FindStringSubmatch(raw); m != nil {
		finalAnswer = strings.TrimSpace(m[1])
	}

	return Reply{Reasoning: reasoning, FinalAnswer: finalAnswer}
}
