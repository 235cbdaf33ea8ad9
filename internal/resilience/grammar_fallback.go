package resilience

import (
	"context"

	"github.com/fluentbyte/tutorcore/pkg/provider/grammar"
	"github.com/fluentbyte/tutorcore/pkg/types"
)

// GrammarFallback implements [grammar.Provider] with automatic failover across
// multiple analyzer backends. Each backend has its own circuit breaker; when
// the primary fails or its breaker is open, the next healthy fallback is
// tried. Typical setup pairs an LLM-backed analyzer with the local rule-based
// one so grammar analysis stays available offline.
type GrammarFallback struct {
	group *FallbackGroup[grammar.Provider]
}

// Compile-time interface assertion.
var _ grammar.Provider = (*GrammarFallback)(nil)

// NewGrammarFallback creates a [GrammarFallback] with primary as the
// preferred backend.
func NewGrammarFallback(primary grammar.Provider, primaryName string, cfg FallbackConfig) *GrammarFallback {
	return &GrammarFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional analyzer as a fallback.
func (f *GrammarFallback) AddFallback(name string, provider grammar.Provider) {
	f.group.AddFallback(name, provider)
}

// Analyze sends the utterance to the first healthy analyzer and returns its
// verdict. If the primary fails, subsequent fallbacks are tried.
func (f *GrammarFallback) Analyze(ctx context.Context, text, contextSummary string, proficiency types.ProficiencyLevel) (*grammar.Analysis, error) {
	return ExecuteWithResult(f.group, func(p grammar.Provider) (*grammar.Analysis, error) {
		return p.Analyze(ctx, text, contextSummary, proficiency)
	})
}
