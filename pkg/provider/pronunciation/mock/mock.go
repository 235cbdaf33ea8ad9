// Package mock provides a test double for the pronunciation package.
//
// Configure Result/Err to control what Score returns, or Fn for
// call-dependent behaviour. ScoreCalls records every invocation.
package mock

import (
	"context"
	"sync"

	"github.com/fluentbyte/tutorcore/pkg/provider/pronunciation"
)

// ScoreCall records a single invocation of Provider.Score.
type ScoreCall struct {
	Audio           []byte
	TranscribedText string
}

// Provider is a mock implementation of pronunciation.Provider.
type Provider struct {
	mu sync.Mutex

	// Result is returned from Score when Fn is nil and Err is nil.
	Result *pronunciation.Result

	// Err, if non-nil, is returned as the error from Score.
	Err error

	// Fn, if non-nil, overrides Result/Err entirely.
	Fn func(ctx context.Context, audio []byte, transcribedText string) (*pronunciation.Result, error)

	// ScoreCalls records every call to Score.
	ScoreCalls []ScoreCall
}

// Compile-time assertion that Provider implements pronunciation.Provider.
var _ pronunciation.Provider = (*Provider)(nil)

// Score records the call and returns the configured result.
func (p *Provider) Score(ctx context.Context, audio []byte, transcribedText string) (*pronunciation.Result, error) {
	p.mu.Lock()
	p.ScoreCalls = append(p.ScoreCalls, ScoreCall{Audio: audio, TranscribedText: transcribedText})
	fn := p.Fn
	res, err := p.Result, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, audio, transcribedText)
	}
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}
	return &pronunciation.Result{Accuracy: 1, ProsodyScore: 1}, nil
}

// Calls returns a snapshot of recorded calls. Thread-safe.
func (p *Provider) Calls() []ScoreCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ScoreCall, len(p.ScoreCalls))
	copy(out, p.ScoreCalls)
	return out
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ScoreCalls = nil
}
