// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package analyzer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ============================================================================
// TRIGGER AND STOP-WORD VOCABULARY
// ============================================================================

// searchTriggers are the Arabic terms whose presence indicates the message
// needs fresh information from the web.
var searchTriggers = []string{
	// Temporal
	"الحالي", "مؤخراً", "أحدث", "الآن", "اليوم", "أمس", "الأسبوع", "الشهر", "السنة",
	"حديث", "جديد",

	// News and reports
	"أخبار", "تحديث", "تقرير", "دراسة", "بحث", "إحصائية", "تحليل",

	// Economy
	"سعر", "أسعار", "بورصة", "سوق", "عملة", "دولار", "يورو",

	// Technology
	"إصدار", "تطبيق", "برنامج", "نظام", "هاتف", "جهاز",

	// Sports
	"مباراة", "نتيجة", "بطولة", "دوري", "مسابقة",

	// Weather
	"طقس", "حرارة", "جو", "أمطار", "رياح",
}

// stopWords are skipped during keyword extraction.
var stopWords = map[string]struct{}{
	// Particles
	"في": {}, "على": {}, "إلى": {}, "من": {}, "عن": {}, "مع": {}, "حتى": {}, "منذ": {}, "لـ": {}, "بـ": {}, "كـ": {},

	// Pronouns
	"أنا": {}, "نحن": {}, "أنت": {}, "أنتم": {}, "هو": {}, "هي": {}, "هم": {}, "هن": {},

	// Question words
	"ما": {}, "ماذا": {}, "متى": {}, "أين": {}, "كيف": {}, "لماذا": {}, "هل": {},

	// Conjunctions
	"و": {}, "أو": {}, "ثم": {}, "فـ": {}, "لكن": {}, "بل": {}, "حيث": {}, "إذ": {}, "إذا": {},

	// Common verbs
	"يوجد": {}, "كان": {}, "يكون": {}, "أصبح": {}, "صار": {}, "ليس": {}, "يمكن": {}, "يجب": {},
}

var (
	// Latin punctuation plus the Arabic question mark and comma.
	punctuationRe = regexp.MustCompile("[.,/#!$%^&*;:{}=\\-_`~()؟،]")

	// Any literal 4-digit year token counts as a temporal trigger.
	yearTokenRe = regexp.MustCompile(`(19|20)\d{2}`)

	digitsOnlyRe = regexp.MustCompile(`^\d+$`)

	technicalTermsRe = regexp.MustCompile(`(?i)API|SDK|HTTP|URL|JSON|XML|HTML|CSS|JavaScript|Python|SQL`)
	questionWordsRe  = regexp.MustCompile(`ما|ماذا|كيف|لماذا|متى|أين|من|هل`)
)

// stripDiacritics removes Arabic harakat (and any other combining marks)
// after NFD decomposition, then recomposes to NFC.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize prepares text for trigger matching: NFC form, diacritics
// stripped, punctuation removed, lowercased, whitespace collapsed.
func Normalize(text string) string {
	normalized, _, err := transform.String(stripDiacritics, text)
	if err != nil {
		normalized = text
	}
	cleaned := punctuationRe.ReplaceAllString(normalized, "")
	cleaned = strings.ToLower(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

// ============================================================================
// SEARCH DECISION
// ============================================================================

// ShouldSearch reports whether the message text calls for a web search.
// True when the normalized text contains any trigger term or a literal
// 4-digit year token.
func ShouldSearch(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	cleaned := Normalize(text)
	for _, trigger := range searchTriggers {
		if strings.Contains(cleaned, trigger) {
			return true
		}
	}
	return yearTokenRe.MatchString(cleaned)
}

// ExtractKeywords distills the search query from a message: punctuation
// stripped, whitespace collapsed, lowercased, then the first 5 tokens that
// are longer than 2 runes, not stop words, and not pure digits, joined by
// single spaces. May return "".
func ExtractKeywords(text string) string {
	cleaned := Normalize(text)
	if cleaned == "" {
		return ""
	}

	keywords := make([]string, 0, 5)
	for _, word := range strings.Fields(cleaned) {
		if len([]rune(word)) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if digitsOnlyRe.MatchString(word) {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == 5 {
			break
		}
	}
	return strings.Join(keywords, " ")
}

// ============================================================================
// COMPLEXITY ANALYSIS
// ============================================================================

// Complexity levels for a message.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Analysis summarizes a message for display purposes.
type Analysis struct {
	Complexity     Complexity
	Words          int
	HasTechnical   bool
	IsQuestion     bool
	RequiresSearch bool
}

// Analyze classifies a message's complexity and search need.
//
// Classification rules:
//  1. Complex: > 20 words, or digits combined with technical terms
//  2. Medium: > 10 words, or technical terms present
//  3. Simple: everything else
func Analyze(text string) Analysis {
	words := len(strings.Fields(text))
	hasNumbers := strings.ContainsAny(text, "0123456789")
	hasTechnical := technicalTermsRe.MatchString(text)

	complexity := ComplexitySimple
	if words > 20 || (hasNumbers && hasTechnical) {
		complexity = ComplexityComplex
	} else if words > 10 || hasTechnical {
		complexity = ComplexityMedium
	}

	return Analysis{
		Complexity:     complexity,
		Words:          words,
		HasTechnical:   hasTechnical,
		IsQuestion:     questionWordsRe.MatchString(text),
		RequiresSearch: ShouldSearch(text),
	}
}
