package transcription

import "time"

// Result is the outcome of transcribing one learner utterance.
type Result struct {
	// Text is the transcribed speech content.
	Text string

	// Confidence is the overall recognition confidence (0.0–1.0). Zero when
	// the backend does not report confidence.
	Confidence float64

	// Words contains per-word timing detail when the backend supports it.
	// Nil otherwise.
	Words []WordTimestamp
}

// WordTimestamp holds per-word timing metadata.
type WordTimestamp struct {
	Word  string
	Start time.Duration
	End   time.Duration
}
