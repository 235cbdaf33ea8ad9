// Package pronunciation defines the Provider interface for pronunciation
// scoring capability adapters.
//
// Pronunciation scoring is only planned for audio turns and always runs
// against the transcribed text, so the transcription capability gates it.
//
// Implementations must be safe for concurrent use.
package pronunciation

import "context"

// Provider is the abstraction over any pronunciation-scoring backend.
type Provider interface {
	// Score rates how closely the learner's audio matches the expected
	// pronunciation of transcribedText (raw 16-bit little-endian signed PCM).
	//
	// Returns capability.ErrUnavailable (wrapped) when the backend cannot be
	// reached and respects ctx cancellation and deadlines promptly.
	Score(ctx context.Context, audio []byte, transcribedText string) (*Result, error)
}
