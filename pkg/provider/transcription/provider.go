// Package transcription defines the Provider interface for speech-to-text
// capability adapters.
//
// The tutoring pipeline feeds a complete learner utterance (raw PCM audio) to
// the provider and expects a single authoritative transcript back: turn-based
// tutoring has no use for interim partials, so the interface is a one-shot
// call rather than a streaming session.
//
// Implementations must be safe for concurrent use; the pipeline shares one
// provider instance across all tutoring sessions.
package transcription

import "context"

// Provider is the abstraction over any speech-to-text backend.
type Provider interface {
	// Transcribe converts a complete utterance of raw 16-bit little-endian
	// signed PCM audio into text. language is a BCP-47 tag ("en", "de");
	// empty lets the backend auto-detect if supported.
	//
	// Returns capability.ErrUnavailable (wrapped) when the backend cannot be
	// reached and respects ctx cancellation and deadlines promptly.
	Transcribe(ctx context.Context, audio []byte, language string) (*Result, error)
}
