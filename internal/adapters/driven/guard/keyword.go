// Package guard provides sensitive-question guard implementations.
package guard

import (
	"context"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure KeywordGuard implements the interface.
var _ driven.SensitiveGuard = (*KeywordGuard)(nil)

// Level selects how aggressive the keyword list is.
type Level string

// Sensitivity levels. Lenient catches only hard secrets, standard adds
// personal contact details, strict adds broader personal data terms.
const (
	LevelLenient  Level = "lenient"
	LevelStandard Level = "standard"
	LevelStrict   Level = "strict"
)

// DefaultKeywords are the question terms treated as requests for sensitive
// information at the standard level. Matching is case-insensitive substring.
var DefaultKeywords = []string{
	"password",
	"phone number",
	"email address",
	"api key",
	"credit card",
	"ssn",
	"secret",
	"contact information",
	"contact",
}

var lenientKeywords = []string{
	"password",
	"api key",
	"credit card",
	"ssn",
	"secret",
}

var strictExtraKeywords = []string{
	"home address",
	"date of birth",
	"bank account",
	"passport",
	"salary",
}

// KeywordsFor returns the keyword list for a sensitivity level.
// Unknown levels get the standard list.
func KeywordsFor(level Level) []string {
	switch level {
	case LevelLenient:
		return lenientKeywords
	case LevelStrict:
		return append(append([]string{}, DefaultKeywords...), strictExtraKeywords...)
	default:
		return DefaultKeywords
	}
}

// KeywordGuard flags questions containing any of a fixed set of sensitive
// terms. Cheap and deterministic; runs before any provider call.
type KeywordGuard struct {
	keywords []string
}

// NewKeywordGuard creates a keyword guard.
// With no keywords given, DefaultKeywords is used.
func NewKeywordGuard(keywords ...string) *KeywordGuard {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return &KeywordGuard{keywords: lowered}
}

// Check reports whether the question contains a sensitive term.
func (g *KeywordGuard) Check(_ context.Context, question string) (bool, error) {
	q := strings.ToLower(question)
	for _, keyword := range g.keywords {
		if strings.Contains(q, keyword) {
			return true, nil
		}
	}
	return false, nil
}

// Name identifies the guard implementation.
func (g *KeywordGuard) Name() string {
	return "keyword"
}
