package pronunciation

// Result is the outcome of scoring one learner utterance.
type Result struct {
	// Accuracy is the overall phonetic accuracy in [0,1].
	Accuracy float64

	// PhonemeErrors lists the words or phonemes that deviated from the
	// expected pronunciation, in order of appearance.
	PhonemeErrors []PhonemeError

	// ProsodyScore rates rhythm and intonation in [0,1].
	ProsodyScore float64
}

// PhonemeError describes one mispronounced unit.
type PhonemeError struct {
	// Word is the affected word as transcribed.
	Word string

	// Expected is the expected phonetic realisation.
	Expected string

	// Actual is the realisation the scorer detected.
	Actual string

	// Score is the per-unit accuracy in [0,1].
	Score float64
}
