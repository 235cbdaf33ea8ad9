// Package translation defines the Provider interface for native-language
// explanation adapters.
//
// The composer calls this capability at most once per turn, after analysis,
// to render the grammar feedback in the learner's native language. The
// explanation is appended to the tutor reply verbatim and never stored in the
// conversation history.
//
// Implementations must be safe for concurrent use.
package translation

import (
	"context"

	"github.com/fluentbyte/tutorcore/pkg/provider/grammar"
)

// Provider is the abstraction over any translation/explanation backend.
type Provider interface {
	// Explain renders the given analysis of text as a short native-language
	// explanation for the learner.
	//
	// Returns capability.ErrUnavailable (wrapped) when the backend cannot be
	// reached and respects ctx cancellation and deadlines promptly.
	Explain(ctx context.Context, text string, analysis *grammar.Analysis) (string, error)
}
