// Package tutor holds the per-turn result types shared by the pipeline and
// the composer.
package tutor

import (
	"github.com/fluentbyte/tutorcore/pkg/capability"
	"github.com/fluentbyte/tutorcore/pkg/provider/grammar"
	"github.com/fluentbyte/tutorcore/pkg/provider/pronunciation"
)

// AnalysisResult aggregates whatever the capability phase produced for one
// turn. Fields belonging to capabilities that failed or timed out stay nil.
// Immutable once aggregation finishes.
type AnalysisResult struct {
	// FluencyScore is the grammar capability's fluency estimate, if any.
	FluencyScore *float64

	// VocabularyLevel is the grammar capability's CEFR-style estimate.
	VocabularyLevel string

	// GrammarErrors lists detected defects in order of appearance.
	GrammarErrors []grammar.Error

	// Pronunciation is the pronunciation verdict for audio turns; nil when
	// scoring was not planned, failed, or timed out.
	Pronunciation *pronunciation.Result
}

// Outcome is how a turn concluded.
type Outcome string

const (
	// OutcomeDone means every planned capability contributed.
	OutcomeDone Outcome = "done"

	// OutcomeDegraded means at least one non-mandatory capability was
	// absent from aggregation.
	OutcomeDegraded Outcome = "degraded"

	// OutcomeFailed means the mandatory grammar analysis failed; the
	// response is the canned apology.
	OutcomeFailed Outcome = "failed"
)

// Response is the final product of one turn. Produced once, immutable,
// returned to the caller and not retained by the core.
type Response struct {
	// Analysis is the aggregated capability output.
	Analysis AnalysisResult

	// TargetLanguageReply is the tutor's reply in the language being
	// learned.
	TargetLanguageReply string

	// NativeLanguageExplanation is the optional bilingual assistance text.
	// Empty means none was generated.
	NativeLanguageExplanation string

	// Confidence is the turn confidence in [0,1].
	Confidence float64

	// LatencyMs is the wall-clock duration of the turn in milliseconds.
	LatencyMs int64

	// CapabilitiesUsed lists the capabilities that contributed to this
	// response.
	CapabilitiesUsed capability.Set

	// Outcome records how the turn concluded.
	Outcome Outcome
}
