package guard

import (
	"context"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Chain implements the interface.
var _ driven.SensitiveGuard = (*Chain)(nil)

// Chain runs guards in order and flags a question as soon as any guard does.
// Guard errors propagate; a failing classifier should surface, not silently
// pass sensitive questions through.
type Chain struct {
	guards []driven.SensitiveGuard
}

// NewChain creates a guard chain.
func NewChain(guards ...driven.SensitiveGuard) *Chain {
	return &Chain{guards: guards}
}

// Check reports whether any guard in the chain flagged the question.
func (c *Chain) Check(ctx context.Context, question string) (bool, error) {
	for _, g := range c.guards {
		flagged, err := g.Check(ctx, question)
		if err != nil {
			return false, err
		}
		if flagged {
			return true, nil
		}
	}
	return false, nil
}

// Name identifies the guard implementation.
func (c *Chain) Name() string {
	names := make([]string, len(c.guards))
	for i, g := range c.guards {
		names[i] = g.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}
