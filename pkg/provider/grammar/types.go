package grammar

// Analysis is the outcome of analysing one learner utterance.
type Analysis struct {
	// FluencyScore estimates overall fluency in [0,1]. Nil when the backend
	// does not compute one.
	FluencyScore *float64

	// VocabularyLevel is a coarse CEFR-style label ("A2", "B1"). Empty when
	// not estimated.
	VocabularyLevel string

	// Errors lists detected defects in order of appearance in the source
	// text. Empty means the utterance is considered correct.
	Errors []Error
}

// Error describes one grammatical defect instance.
type Error struct {
	// Kind is a stable identifier for the defect category
	// (e.g. "verb-form", "article", "word-order").
	Kind string

	// Original is the defective fragment as written by the learner.
	Original string

	// Correction is the suggested replacement.
	Correction string

	// Explanation tells the learner why the original is wrong, in the
	// target language.
	Explanation string

	// Span is the byte range [Start,End) of Original within the analysed
	// text. Nil when the backend cannot locate the defect precisely.
	Span *Span
}

// Span is a half-open byte range within the analysed text.
type Span struct {
	Start int
	End   int
}
