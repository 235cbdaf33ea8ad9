// Package planner decides, per turn, which capabilities the pipeline invokes
// and which feedback strategy shapes the reply.
//
// Planning happens in two pure steps. Analyze runs before any capability is
// invoked and fixes the execution shape of the turn: which capabilities run,
// in what phases, and how complex the input is. The feedback strategy depends
// on the grammar verdict, which does not exist yet at that point, so Analyze
// records a provisional strategy and the orchestrator finalises it with
// Strategy once analysis has completed.
package planner

import (
	"strings"

	"github.com/fluentbyte/tutorcore/internal/session"
	"github.com/fluentbyte/tutorcore/pkg/capability"
	"github.com/fluentbyte/tutorcore/pkg/provider/grammar"
	"github.com/fluentbyte/tutorcore/pkg/types"
)

// Complexity classifies the input by token count.
type Complexity string

const (
	Simple  Complexity = "simple"  // < 5 tokens
	Medium  Complexity = "medium"  // 5..14 tokens
	Complex Complexity = "complex" // >= 15 tokens
)

// FeedbackStrategy is the tutoring style selected for a reply.
type FeedbackStrategy string

const (
	// Praise acknowledges a correct utterance.
	Praise FeedbackStrategy = "praise"

	// Correct briefly names the mistake and its fix.
	Correct FeedbackStrategy = "correct"

	// Explain corrects and includes the full explanation. Always selected
	// for elementary learners.
	Explain FeedbackStrategy = "explain"

	// Drill corrects and asks the learner to reuse the corrected form.
	// Selected instead of Correct when the error kind is a recurring one.
	Drill FeedbackStrategy = "drill"
)

// recurringThreshold is the number of past occurrences of an error kind at
// which a mistake counts as systematic rather than one-off.
const recurringThreshold = 2

// TaskPlan fixes the execution shape of one turn. Created once per turn and
// discarded after use; the orchestrator derives the final plan via
// WithStrategy rather than mutating it.
type TaskPlan struct {
	// Primary lists the capabilities that must run for every turn.
	Primary capability.Set

	// Parallel lists the capabilities that run concurrently with the primary
	// phase. Transcription is never listed here: it gates the parallel phase
	// for audio turns instead.
	Parallel capability.Set

	// NeedsTranscription is true for audio turns; transcription runs
	// sequentially before the analysis phase.
	NeedsTranscription bool

	// NeedsNativeExplanation caches the session's bilingual-assistance
	// decision at planning time.
	NeedsNativeExplanation bool

	// Strategy is the feedback strategy. Provisional until the orchestrator
	// finalises it against the grammar verdict.
	Strategy FeedbackStrategy

	// InputComplexity classifies the utterance by token count.
	InputComplexity Complexity

	// Proficiency is the learner's level at planning time.
	Proficiency types.ProficiencyLevel
}

// WithStrategy returns a copy of the plan with the final strategy set.
func (p TaskPlan) WithStrategy(s FeedbackStrategy) TaskPlan {
	p.Strategy = s
	p.Primary = p.Primary.Clone()
	p.Parallel = p.Parallel.Clone()
	return p
}

// Planner builds task plans. It is stateless and safe for concurrent use.
type Planner struct{}

// New returns a new Planner.
func New() *Planner { return &Planner{} }

// Analyze inspects the utterance and session state and returns the plan for
// this turn. For audio turns userText is the empty string until
// transcription has run; complexity is then classified by the orchestrator
// against the transcript, but the capability shape is already fixed here.
func (pl *Planner) Analyze(userText string, hasAudio bool, ctx *session.Context) TaskPlan {
	plan := TaskPlan{
		Primary:                capability.NewSet(capability.GrammarAnalysis),
		Parallel:               capability.NewSet(),
		NeedsTranscription:     hasAudio,
		NeedsNativeExplanation: ctx.NeedsNativeExplanation(),
		InputComplexity:        Classify(userText),
		Proficiency:            proficiencyOf(ctx),
	}
	if hasAudio {
		plan.Parallel.Add(capability.PronunciationScoring)
	}

	// Provisional: assumes the utterance is correct. Finalised by Strategy
	// once the grammar verdict exists.
	plan.Strategy = pl.Strategy(ctx.Profile(), nil)
	return plan
}

// Strategy selects the feedback strategy for the given grammar verdict.
// Pure; safe to call with a nil or empty error list.
func (pl *Planner) Strategy(profile *types.LearnerProfile, errs []grammar.Error) FeedbackStrategy {
	if profile != nil && profile.Proficiency == types.Elementary {
		return Explain
	}
	if len(errs) == 0 {
		return Praise
	}
	if profile != nil {
		for _, e := range errs {
			if profile.ErrorTagCount(e.Kind) >= recurringThreshold {
				return Drill
			}
		}
	}
	return Correct
}

// Classify maps token count onto a Complexity band. Tokens are
// whitespace-delimited.
func Classify(text string) Complexity {
	switch n := len(strings.Fields(text)); {
	case n >= 15:
		return Complex
	case n >= 5:
		return Medium
	default:
		return Simple
	}
}

func proficiencyOf(ctx *session.Context) types.ProficiencyLevel {
	if p := ctx.Profile(); p != nil {
		return p.Proficiency
	}
	return types.Intermediate
}
