// Package grammar defines the Provider interface for grammar-analysis
// capability adapters.
//
// Grammar analysis is the one mandatory capability of the tutoring pipeline:
// fluency scoring and vocabulary-level estimation are derived as part of the
// same call rather than being separate capabilities. When this capability
// fails, the whole turn fails.
//
// Implementations must be safe for concurrent use.
package grammar

import (
	"context"

	"github.com/fluentbyte/tutorcore/pkg/types"
)

// Provider is the abstraction over any grammar-analysis backend.
type Provider interface {
	// Analyze inspects text for grammatical defects and estimates fluency
	// and vocabulary level. contextSummary is the bounded conversation
	// history used as conditioning context; proficiency tunes the depth of
	// explanations (elementary learners receive fuller ones).
	//
	// Returns capability.ErrUnavailable (wrapped) when the backend cannot be
	// reached and respects ctx cancellation and deadlines promptly.
	Analyze(ctx context.Context, text, contextSummary string, proficiency types.ProficiencyLevel) (*Analysis, error)
}
