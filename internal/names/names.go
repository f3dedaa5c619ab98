// Package names detects a self-introduced display name in free text.
package names

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minNameLen = 2
	maxNameLen = 40
)

// Extractor finds a candidate display name in a chat message.
type Extractor interface {
	// Extract returns the candidate name and true, or "" and false when no
	// name is present.
	Extract(text string) (string, bool)
}

// token is one word-like unit of a name: letters, apostrophes and hyphens.
const token = `[a-z][a-z'-]*`

// capture matches one to three whitespace-separated tokens.
const capture = `(` + token + `(?:\s+` + token + `){0,2})\b`

// DefaultPatterns are the introduction phrases tried in order.
var DefaultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bmy name is\s+` + capture),
	regexp.MustCompile(`(?i)\bi am\s+` + capture),
	regexp.MustCompile(`(?i)\bi['’]m\s+` + capture),
}

// notNames are leading words that follow "I am"/"I'm" in ordinary sentences.
// A capture that starts with one of them is not treated as a name.
var notNames = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "not": {}, "sure": {}, "so": {}, "very": {},
	"just": {}, "also": {}, "still": {}, "really": {}, "quite": {}, "pretty": {},
	"looking": {}, "trying": {}, "going": {}, "having": {}, "using": {}, "getting": {},
	"wondering": {}, "curious": {}, "interested": {}, "allergic": {}, "sensitive": {},
	"worried": {}, "new": {}, "here": {}, "from": {}, "in": {}, "on": {}, "at": {},
	"fine": {}, "good": {}, "ok": {}, "okay": {}, "thinking": {}, "searching": {},
	"planning": {}, "currently": {}, "always": {}, "never": {}, "over": {}, "under": {},
}

// PatternExtractor applies an ordered list of patterns and returns the first
// accepted capture.
type PatternExtractor struct {
	patterns []*regexp.Regexp
}

// NewPatternExtractor creates an extractor over patterns. Each pattern must
// have one capture group holding the name. With no patterns, DefaultPatterns
// are used.
func NewPatternExtractor(patterns ...*regexp.Regexp) *PatternExtractor {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	return &PatternExtractor{patterns: patterns}
}

// Extract returns the first capture that normalizes to 2..40 characters.
func (e *PatternExtractor) Extract(text string) (string, bool) {
	for _, rx := range e.patterns {
		m := rx.FindStringSubmatch(text)
		if len(m) < 2 || m[1] == "" {
			continue
		}
		name := strings.Join(strings.Fields(m[1]), " ")
		if n := utf8.RuneCountInString(name); n < minNameLen || n > maxNameLen {
			continue
		}
		if isCommonPhrase(name) {
			continue
		}
		return name, true
	}
	return "", false
}

func isCommonPhrase(name string) bool {
	first, _, _ := strings.Cut(name, " ")
	_, ok := notNames[strings.ToLower(first)]
	return ok
}

var _ Extractor = (*PatternExtractor)(nil)
