package driven

import "context"

// SensitiveGuard screens questions for requests seeking secrets, PII, or
// policy-violating content before any retrieval or generation happens.
// The detection policy is pluggable: keyword lists, classifiers, or a
// combination.
type SensitiveGuard interface {
	// Check reports whether the question should be refused.
	Check(ctx context.Context, question string) (bool, error)

	// Name identifies the guard implementation for logging.
	Name() string
}
