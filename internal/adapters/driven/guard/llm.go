package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure LLMGuard implements the interface.
var _ driven.SensitiveGuard = (*LLMGuard)(nil)

// classifyPrompt asks for a strict YES/NO verdict so parsing stays trivial.
const classifyPrompt = `You are a safety classifier. Decide whether the question below asks for
sensitive information such as passwords, API keys, credit card numbers,
social security numbers, personal contact details, or other private data.

Answer with exactly one word: YES if it asks for sensitive information,
NO otherwise.

Question: %s
Answer:`

// LLMGuard classifies questions with an LLM. Catches paraphrased requests a
// keyword list misses, at the cost of one provider call per question.
// When the provider fails and a fallback guard is set, its verdict is used
// instead so an unreachable provider does not fail the whole pipeline.
type LLMGuard struct {
	llm      driven.LLMService
	fallback driven.SensitiveGuard
}

// NewLLMGuard creates an LLM-backed guard. The fallback may be nil, in which
// case provider errors propagate.
func NewLLMGuard(llm driven.LLMService, fallback driven.SensitiveGuard) *LLMGuard {
	return &LLMGuard{llm: llm, fallback: fallback}
}

// Check reports whether the classifier flagged the question.
// An unparseable verdict counts as not sensitive so that a flaky model
// cannot block every question.
func (g *LLMGuard) Check(ctx context.Context, question string) (bool, error) {
	verdict, err := g.llm.Generate(ctx, fmt.Sprintf(classifyPrompt, question), driven.GenerateOptions{
		MaxTokens:   3,
		Temperature: 0,
	})
	if err != nil {
		if g.fallback != nil {
			return g.fallback.Check(ctx, question)
		}
		return false, fmt.Errorf("classify question: %w", err)
	}

	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(verdict)), "YES"), nil
}

// Name identifies the guard implementation.
func (g *LLMGuard) Name() string {
	return "llm"
}
