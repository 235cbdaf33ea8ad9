// Package mock provides a test double for the transcription package.
//
// Configure Result/Err to control what Transcribe returns, or Fn for
// call-dependent behaviour. TranscribeCalls records every invocation.
package mock

import (
	"context"
	"sync"

	"github.com/fluentbyte/tutorcore/pkg/provider/transcription"
)

// TranscribeCall records a single invocation of Provider.Transcribe.
type TranscribeCall struct {
	// Audio is the raw PCM passed to Transcribe.
	Audio []byte
	// Language is the language tag passed to Transcribe.
	Language string
}

// Provider is a mock implementation of transcription.Provider.
type Provider struct {
	mu sync.Mutex

	// Result is returned from Transcribe when Fn is nil and Err is nil.
	Result *transcription.Result

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// Fn, if non-nil, overrides Result/Err entirely.
	Fn func(ctx context.Context, audio []byte, language string) (*transcription.Result, error)

	// TranscribeCalls records every call to Transcribe.
	TranscribeCalls []TranscribeCall
}

// Compile-time assertion that Provider implements transcription.Provider.
var _ transcription.Provider = (*Provider)(nil)

// Transcribe records the call and returns the configured result.
func (p *Provider) Transcribe(ctx context.Context, audio []byte, language string) (*transcription.Result, error) {
	p.mu.Lock()
	p.TranscribeCalls = append(p.TranscribeCalls, TranscribeCall{Audio: audio, Language: language})
	fn := p.Fn
	res, err := p.Result, p.Err
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, audio, language)
	}
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}
	return &transcription.Result{Text: "", Confidence: 1}, nil
}

// Calls returns a snapshot of recorded calls. Thread-safe.
func (p *Provider) Calls() []TranscribeCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TranscribeCall, len(p.TranscribeCalls))
	copy(out, p.TranscribeCalls)
	return out
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranscribeCalls = nil
}
