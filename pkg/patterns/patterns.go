// Package patterns implements the fixed problem vocabulary used to flag
// journal lines as noteworthy.
//
// The vocabulary is a compatibility artifact: reports filed over time are
// diffed and compared against each other, so entries are preserved verbatim
// even where the open/closed boundary choices look inconsistent. Do not
// "fix" apparent redundancies (e.g. "error" already covers "erroneous").
package patterns

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Pattern is one vocabulary entry. Text holds one or more space-separated
// words; multi-word entries match with arbitrary content between the words,
// so "no such file" also hits "no relevant such config file". Closed entries
// require a word boundary after the final word; open entries match any
// suffix (e.g. "fail" also hits "failed" and "failure").
type Pattern struct {
	Text   string
	Closed bool
}

// defaultVocabulary is the fixed 35-entry problem vocabulary covering
// failure, negation and urgency wording.
var defaultVocabulary = []Pattern{
	{Text: "abort"},
	{Text: "bug", Closed: true},
	{Text: "cannot", Closed: true},
	{Text: "catastrophic", Closed: true},
	{Text: "could not", Closed: true},
	{Text: "couldn't", Closed: true},
	{Text: "critical"},
	{Text: "die", Closed: true},
	{Text: "died", Closed: true},
	{Text: "does not exist", Closed: true},
	{Text: "dying", Closed: true},
	{Text: "empty", Closed: true},
	{Text: "erroneous", Closed: true},
	{Text: "error"},
	{Text: "fail"},
	{Text: "fatal"},
	{Text: "impossible", Closed: true},
	{Text: "incorrect", Closed: true},
	{Text: "invalid", Closed: true},
	{Text: "missing", Closed: true},
	{Text: "no such file"},
	{Text: "no such process"},
	{Text: "not exist"},
	{Text: "not found"},
	{Text: "not supported"},
	{Text: "too few", Closed: true},
	{Text: "too many", Closed: true},
	{Text: "unable", Closed: true},
	{Text: "unavailable", Closed: true},
	{Text: "unexpected"},
	{Text: "unknown", Closed: true},
	{Text: "urgent", Closed: true},
	{Text: "warn"},
	{Text: "warning", Closed: true},
	{Text: "wrong", Closed: true},
}

// DefaultPatterns returns a copy of the fixed problem vocabulary.
func DefaultPatterns() []Pattern {
	patterns := make([]Pattern, len(defaultVocabulary))
	copy(patterns, defaultVocabulary)
	return patterns
}

// Matcher reports whether a log line contains any vocabulary entry. Matching
// is a plain OR across all entries with no precedence or weighting. A
// Matcher is immutable and safe for concurrent use.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles the given patterns into a single case-insensitive
// matcher. Each word is anchored on a leading word boundary; words of a
// multi-word entry are joined with a wildcard gap.
func NewMatcher(patterns []Pattern) (*Matcher, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no patterns given")
	}

	alternatives := make([]string, 0, len(patterns))
	for _, p := range patterns {
		words := strings.Fields(p.Text)
		if len(words) == 0 {
			return nil, fmt.Errorf("pattern with empty text")
		}
		quoted := make([]string, len(words))
		for i, word := range words {
			quoted[i] = `\b` + regexp.QuoteMeta(word)
		}
		alternative := strings.Join(quoted, `.*`)
		if p.Closed {
			alternative += `\b`
		}
		alternatives = append(alternatives, alternative)
	}

	re, err := regexp.Compile(`(?i)(` + strings.Join(alternatives, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile problem vocabulary: %w", err)
	}
	return &Matcher{re: re}, nil
}

var (
	defaultOnce    sync.Once
	defaultMatcher *Matcher
)

// Default returns the matcher for the fixed vocabulary, compiled once per
// process.
func Default() *Matcher {
	defaultOnce.Do(func() {
		m, err := NewMatcher(defaultVocabulary)
		if err != nil {
			panic(fmt.Sprintf("default problem vocabulary failed to compile: %v", err))
		}
		defaultMatcher = m
	})
	return defaultMatcher
}

// Matches reports whether line contains at least one vocabulary entry.
func (m *Matcher) Matches(line string) bool {
	return m.re.MatchString(line)
}
