// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package segment

import (
	"regexp"
	"strings"
)

// Kind distinguishes prose from fenced code.
type Kind int

const (
	KindProse Kind = iota
	KindCode
)

// Segment is one contiguous run of prose or code.
type Segment struct {
	Kind Kind

	// Language is the fence tag of a code segment ("go", "python", ...).
	// Empty for prose and untagged fences.
	Language string

	// Text holds the segment content without fence lines.
	Text string

	// HasBody marks a segment that enclosed at least one line. It
	// distinguishes a fence around a single blank line from a fence
	// around nothing, whose Text is empty either way.
	HasBody bool
}

// linkRe matches bare URLs inside prose for link rendering.
var linkRe = regexp.MustCompile(`https?://[^\s]+`)

// Split breaks content into ordered prose/code segments. Fence lines
// toggle code mode; an unterminated fence turns the rest of the content
// into a single code segment.
func Split(content string) []Segment {
	if content == "" {
		return nil
	}

	var segments []Segment
	var buf []string
	inCode := false
	language := ""

	flush := func(kind Kind, lang string) {
		// No lines at all means nothing to emit; a buffered empty line
		// still matters for exact reassembly, so it stays.
		if len(buf) == 0 && kind == KindProse {
			return
		}
		segments = append(segments, Segment{
			Kind:     kind,
			Language: lang,
			Text:     strings.Join(buf, "\n"),
			HasBody:  len(buf) > 0,
		})
		buf = nil
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inCode {
				flush(KindCode, language)
				inCode = false
				language = ""
			} else {
				flush(KindProse, "")
				inCode = true
				language = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			}
			continue
		}
		buf = append(buf, line)
	}

	if inCode {
		// Unterminated fence: everything after it is code.
		flush(KindCode, language)
	} else {
		flush(KindProse, "")
	}

	return segments
}

// Join reassembles segments: prose verbatim, code re-wrapped in fences
// with its language tag. For balanced input this inverts Split.
func Join(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg.Kind {
		case KindCode:
			if seg.Text == "" && !seg.HasBody {
				parts = append(parts, "```"+seg.Language+"\n```")
			} else {
				// A body of one blank line has empty Text but HasBody
				// set, and re-wraps as an extra newline between fences.
				parts = append(parts, "```"+seg.Language+"\n"+seg.Text+"\n```")
			}
		default:
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// LinkPart is a run of prose text that either is or is not a URL.
type LinkPart struct {
	Text   string
	IsLink bool
}

// SplitLinks carves prose text into plain and URL runs, preserving order
// and content.
func SplitLinks(text string) []LinkPart {
	matches := linkRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		if text == "" {
			return nil
		}
		return []LinkPart{{Text: text}}
	}

	var parts []LinkPart
	prev := 0
	for _, m := range matches {
		if m[0] > prev {
			parts = append(parts, LinkPart{Text: text[prev:m[0]]})
		}
		parts = append(parts, LinkPart{Text: text[m[0]:m[1]], IsLink: true})
		prev = m[1]
	}
	if prev < len(text) {
		parts = append(parts, LinkPart{Text: text[prev:]})
	}
	return parts
}
