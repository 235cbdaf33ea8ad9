// Package mock provides a test double for the translation package.
package mock

import (
	"context"
	"sync"

	"github.com/fluentbyte/tutorcore/pkg/provider/grammar"
	"github.com/fluentbyte/tutorcore/pkg/provider/translation"
)

// ExplainCall records a single invocation of Provider.Explain.
type ExplainCall struct {
	Text     string
	Analysis *grammar.Analysis
}

// Provider is a mock implementation of translation.Provider.
type Provider struct {
	mu sync.Mutex

	// Text is returned from Explain when Fn is nil and Err is nil.
	Text string

	// Err, if non-nil, is returned as the error from Explain.
	Err error

	// Fn, if non-nil, overrides Text/Err entirely.
	Fn func(ctx context.Context, text string, analysis *grammar.Analysis) (string, error)

	// ExplainCalls records every call to Explain.
	ExplainCalls []ExplainCall
}

// Compile-time assertion that Provider implements translation.Provider.
var _ translation.Provider = (*Provider)(nil)

// Explain records the call and returns the configured text.
func (p *Provider) Explain(ctx context.Context, text string, analysis *grammar.Analysis) (string, error) {
	p.mu.Lock()
	p.ExplainCalls = append(p.ExplainCalls, ExplainCall{Text: text, Analysis: analysis})
	fn := p.Fn
	out, err := p.Text, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, analysis)
	}
	if err != nil {
		return "", err
	}
	return out, nil
}

// Calls returns a snapshot of recorded calls. Thread-safe.
func (p *Provider) Calls() []ExplainCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ExplainCall, len(p.ExplainCalls))
	copy(out, p.ExplainCalls)
	return out
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ExplainCalls = nil
}
