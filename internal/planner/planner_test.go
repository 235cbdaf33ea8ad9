package planner_test

import (
	"strings"
	"testing"

	"github.com/fluentbyte/tutorcore/internal/planner"
	"github.com/fluentbyte/tutorcore/internal/session"
	"github.com/fluentbyte/tutorcore/pkg/capability"
	"github.com/fluentbyte/tutorcore/pkg/provider/grammar"
	"github.com/fluentbyte/tutorcore/pkg/types"
)

func ctx(level types.ProficiencyLevel, tags ...string) *session.Context {
	return session.NewContext(&types.LearnerProfile{
		UserID:             "u1",
		Proficiency:        level,
		RecurringErrorTags: tags,
	})
}

func TestClassify_Boundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tokens int
		want   planner.Complexity
	}{
		{0, planner.Simple},
		{4, planner.Simple},
		{5, planner.Medium},
		{14, planner.Medium},
		{15, planner.Complex},
		{30, planner.Complex},
	}
	for _, tc := range cases {
		text := strings.TrimSpace(strings.Repeat("word ", tc.tokens))
		if got := planner.Classify(text); got != tc.want {
			t.Errorf("Classify(%d tokens): want %v, got %v", tc.tokens, tc.want, got)
		}
	}
}

func TestAnalyze_TextTurn(t *testing.T) {
	t.Parallel()

	plan := planner.New().Analyze("I went to the kitchen", false, ctx(types.Intermediate))

	if !plan.Primary.Has(capability.GrammarAnalysis) {
		t.Error("primary must contain grammar analysis")
	}
	if len(plan.Parallel) != 0 {
		t.Errorf("parallel: want empty for text turns, got %v", plan.Parallel)
	}
	if plan.NeedsTranscription {
		t.Error("text turns must not need transcription")
	}
	if plan.InputComplexity != planner.Medium {
		t.Errorf("complexity: want medium, got %v", plan.InputComplexity)
	}
}

func TestAnalyze_AudioTurn(t *testing.T) {
	t.Parallel()

	plan := planner.New().Analyze("", true, ctx(types.Intermediate))

	if !plan.NeedsTranscription {
		t.Error("audio turns must need transcription")
	}
	if !plan.Parallel.Has(capability.PronunciationScoring) {
		t.Error("parallel must contain pronunciation scoring for audio turns")
	}
	if plan.Parallel.Has(capability.Transcription) {
		t.Error("transcription must never be listed as parallel")
	}
	if plan.Primary.Has(capability.PronunciationScoring) {
		t.Error("pronunciation scoring must not be primary")
	}
}

func TestAnalyze_NativeExplanationFromContext(t *testing.T) {
	t.Parallel()

	plan := planner.New().Analyze("hello", false, ctx(types.Elementary))
	if !plan.NeedsNativeExplanation {
		t.Error("elementary learner must need a native explanation")
	}

	plan = planner.New().Analyze("hello", false, ctx(types.UpperIntermediate))
	if plan.NeedsNativeExplanation {
		t.Error("upper-intermediate learner with no history must not need one")
	}
}

func TestStrategy(t *testing.T) {
	t.Parallel()

	p := planner.New()
	verbForm := []grammar.Error{{Kind: "verb-form"}}

	cases := []struct {
		name  string
		level types.ProficiencyLevel
		tags  []string
		errs  []grammar.Error
		want  planner.FeedbackStrategy
	}{
		{"no errors praise", types.Intermediate, nil, nil, planner.Praise},
		{"errors correct", types.Intermediate, nil, verbForm, planner.Correct},
		{"elementary always explain", types.Elementary, nil, verbForm, planner.Explain},
		{"elementary explain even without errors", types.Elementary, nil, nil, planner.Explain},
		{"recurring twice drills", types.Intermediate, []string{"verb-form", "verb-form"}, verbForm, planner.Drill},
		{"recurring once corrects", types.Intermediate, []string{"verb-form"}, verbForm, planner.Correct},
		{"recurring other kind corrects", types.Intermediate, []string{"article", "article"}, verbForm, planner.Correct},
		{"recurring drills above elementary", types.UpperIntermediate, []string{"verb-form", "verb-form", "verb-form"}, verbForm, planner.Drill},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			profile := &types.LearnerProfile{Proficiency: tc.level, RecurringErrorTags: tc.tags}
			if got := p.Strategy(profile, tc.errs); got != tc.want {
				t.Errorf("Strategy: want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestWithStrategy_DoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	plan := planner.New().Analyze("hello world how are you", true, ctx(types.Intermediate))
	derived := plan.WithStrategy(planner.Drill)

	if plan.Strategy == planner.Drill {
		t.Error("WithStrategy must not mutate the original plan")
	}
	derived.Parallel.Add(capability.Translation)
	if plan.Parallel.Has(capability.Translation) {
		t.Error("derived plan's sets must be independent copies")
	}
}
