// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package segment

import (
	"testing"
)

func TestSplit_ProseOnly(t *testing.T) {
	segs := Split("مرحبا بالعالم\nسطر ثاني")

	if len(segs) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segs))
	}
	if segs[0].Kind != KindProse {
		t.Error("Expected prose segment")
	}
	if segs[0].Text != "مرحبا بالعالم\nسطر ثاني" {
		t.Errorf("Text: got %q", segs[0].Text)
	}
}

func TestSplit_CodeWithLanguage(t *testing.T) {
	content := "هذا مثال:\n```go\nfmt.Println(\"hi\")\n```\nنهاية الشرح"

	segs := Split(content)

	if len(segs) != 3 {
		t.Fatalf("Expected 3 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Kind != KindProse || segs[0].Text != "هذا مثال:" {
		t.Errorf("First segment: %+v", segs[0])
	}
	if segs[1].Kind != KindCode {
		t.Error("Second segment should be code")
	}
	if segs[1].Language != "go" {
		t.Errorf("Language: got %q", segs[1].Language)
	}
	if segs[1].Text != "fmt.Println(\"hi\")" {
		t.Errorf("Code text: got %q", segs[1].Text)
	}
	if segs[2].Kind != KindProse || segs[2].Text != "نهاية الشرح" {
		t.Errorf("Third segment: %+v", segs[2])
	}
}

func TestSplit_UntaggedFence(t *testing.T) {
	segs := Split("```\nplain code\n```")

	if len(segs) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segs))
	}
	if segs[0].Language != "" {
		t.Errorf("Expected empty language, got %q", segs[0].Language)
	}
}

func TestSplit_UnterminatedFence(t *testing.T) {
	segs := Split("نص\n```python\nprint(1)\nprint(2)")

	if len(segs) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(segs))
	}
	if segs[1].Kind != KindCode || segs[1].Language != "python" {
		t.Errorf("Code segment: %+v", segs[1])
	}
	if segs[1].Text != "print(1)\nprint(2)" {
		t.Errorf("Code text: got %q", segs[1].Text)
	}
}

func TestSplit_Empty(t *testing.T) {
	if segs := Split(""); segs != nil {
		t.Errorf("Expected nil, got %+v", segs)
	}
}

func TestSplitJoin_RoundTrip(t *testing.T) {
	cases := []string{
		"نص عادي فقط",
		"قبل\n```go\ncode here\n```\nبعد",
		"```js\nconsole.log(1)\n```",
		"فقرة أولى\n\nفقرة ثانية\n```\nblock\n```",
		"```\n```",
		"```go\n\n```",
		"x\n```\n\n```\ny",
		"نص\n\n```python\nx = 1\n\ny = 2\n```\n\nخاتمة",
	}

	for _, content := range cases {
		if got := Join(Split(content)); got != content {
			t.Errorf("Round trip failed:\noriginal: %q\ngot:      %q", content, got)
		}
	}
}

func TestSplit_BlankLineBodyDistinctFromEmpty(t *testing.T) {
	empty := Split("```go\n```")
	if len(empty) != 1 || empty[0].HasBody {
		t.Fatalf("Zero-line body: %+v", empty)
	}

	blank := Split("```go\n\n```")
	if len(blank) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(blank))
	}
	if blank[0].Text != "" || !blank[0].HasBody {
		t.Errorf("One-blank-line body: %+v", blank[0])
	}

	if got := Join(blank); got != "```go\n\n```" {
		t.Errorf("Join dropped the blank line: %q", got)
	}
}

func TestSplit_MultipleCodeBlocks(t *testing.T) {
	content := "```go\na\n```\nوسط\n```js\nb\n```"

	segs := Split(content)

	if len(segs) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(segs))
	}
	if segs[0].Language != "go" || segs[2].Language != "js" {
		t.Errorf("Languages: %q, %q", segs[0].Language, segs[2].Language)
	}
	if segs[1].Kind != KindProse || segs[1].Text != "وسط" {
		t.Errorf("Middle segment: %+v", segs[1])
	}
}

func TestSplitLinks(t *testing.T) {
	parts := SplitLinks("انظر https://example.com/a للمزيد")

	if len(parts) != 3 {
		t.Fatalf("Expected 3 parts, got %d: %+v", len(parts), parts)
	}
	if parts[0].IsLink || parts[2].IsLink {
		t.Error("Prose parts flagged as links")
	}
	if !parts[1].IsLink || parts[1].Text != "https://example.com/a" {
		t.Errorf("Link part: %+v", parts[1])
	}

	// Content is preserved exactly.
	joined := ""
	for _, p := range parts {
		joined += p.Text
	}
	if joined != "انظر https://example.com/a للمزيد" {
		t.Errorf("Parts do not reassemble: %q", joined)
	}
}

func TestSplitLinks_NoLinks(t *testing.T) {
	parts := SplitLinks("لا روابط هنا")
	if len(parts) != 1 || parts[0].IsLink {
		t.Errorf("Unexpected parts: %+v", parts)
	}
}

func TestSplitLinks_Empty(t *testing.T) {
	if parts := SplitLinks(""); parts != nil {
		t.Errorf("Expected nil, got %+v", parts)
	}
}
