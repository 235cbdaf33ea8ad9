// Package mock provides a test double for the grammar package.
//
// Configure Analysis/Err to control what Analyze returns, or Fn for
// call-dependent behaviour. AnalyzeCalls records every invocation.
package mock

import (
	"context"
	"sync"

	"github.com/fluentbyte/tutorcore/pkg/provider/grammar"
	"github.com/fluentbyte/tutorcore/pkg/types"
)

// AnalyzeCall records a single invocation of Provider.Analyze.
type AnalyzeCall struct {
	Text           string
	ContextSummary string
	Proficiency    types.ProficiencyLevel
}

// Provider is a mock implementation of grammar.Provider.
type Provider struct {
	mu sync.Mutex

	// Analysis is returned from Analyze when Fn is nil and Err is nil.
	Analysis *grammar.Analysis

	// Err, if non-nil, is returned as the error from Analyze.
	Err error

	// Fn, if non-nil, overrides Analysis/Err entirely.
	Fn func(ctx context.Context, text, contextSummary string, proficiency types.ProficiencyLevel) (*grammar.Analysis, error)

	// AnalyzeCalls records every call to Analyze.
	AnalyzeCalls []AnalyzeCall
}

// Compile-time assertion that Provider implements grammar.Provider.
var _ grammar.Provider = (*Provider)(nil)

// Analyze records the call and returns the configured result.
func (p *Provider) Analyze(ctx context.Context, text, contextSummary string, proficiency types.ProficiencyLevel) (*grammar.Analysis, error) {
	p.mu.Lock()
	p.AnalyzeCalls = append(p.AnalyzeCalls, AnalyzeCall{
		Text:           text,
		ContextSummary: contextSummary,
		Proficiency:    proficiency,
	})
	fn := p.Fn
	res, err := p.Analysis, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, contextSummary, proficiency)
	}
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}
	return &grammar.Analysis{}, nil
}

// Calls returns a snapshot of recorded calls. Thread-safe.
func (p *Provider) Calls() []AnalyzeCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]AnalyzeCall, len(p.AnalyzeCalls))
	copy(out, p.AnalyzeCalls)
	return out
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.AnalyzeCalls = nil
}
