// Package compose turns an aggregated analysis and a task plan into the two
// learner-facing strings: the target-language reply and the optional
// native-language explanation.
package compose

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fluentbyte/tutorcore/internal/planner"
	"github.com/fluentbyte/tutorcore/internal/tutor"
	"github.com/fluentbyte/tutorcore/pkg/provider/grammar"
	"github.com/fluentbyte/tutorcore/pkg/provider/translation"
)

// Output is the result of composing one turn.
type Output struct {
	// Reply is the tutor's reply in the target language.
	Reply string

	// NativeExplanation is the bilingual assistance text, verbatim from the
	// translation capability. Empty when none was generated.
	NativeExplanation string

	// TranslationUsed is true when the translation capability was invoked
	// and returned, regardless of whether its text is empty.
	TranslationUsed bool

	// TranslationFailed is true when an explanation was wanted but the
	// translation capability failed. The turn still completes.
	TranslationFailed bool
}

// Composer renders replies from analysis results. Stateless apart from its
// collaborators; safe for concurrent use.
type Composer struct {
	translator translation.Provider
	log        *slog.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) { c.log = l }
}

// New returns a Composer. translator may be nil, in which case native
// explanations are never generated.
func New(translator translation.Provider, opts ...Option) *Composer {
	c := &Composer{
		translator: translator,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose renders the reply for one turn. When the analysis holds no grammar
// errors the reply is an encouragement and no native explanation is produced,
// regardless of the plan. Otherwise the first detected error drives the
// reply, phrased per the plan's feedback strategy, and a native explanation
// is requested iff the plan asks for one.
func (c *Composer) Compose(ctx context.Context, userText string, analysis tutor.AnalysisResult, plan planner.TaskPlan) Output {
	if len(analysis.GrammarErrors) == 0 {
		return Output{Reply: encouragement(plan.InputComplexity)}
	}

	first := analysis.GrammarErrors[0]
	out := Output{Reply: replyFor(plan.Strategy, first)}

	if !plan.NeedsNativeExplanation || c.translator == nil {
		return out
	}

	native, err := c.translator.Explain(ctx, userText, &grammar.Analysis{
		FluencyScore:    analysis.FluencyScore,
		VocabularyLevel: analysis.VocabularyLevel,
		Errors:          analysis.GrammarErrors,
	})
	if err != nil {
		c.log.WarnContext(ctx, "native explanation unavailable", "error", err)
		out.TranslationFailed = true
		return out
	}
	out.TranslationUsed = true
	out.NativeExplanation = native
	return out
}

func encouragement(cx planner.Complexity) string {
	switch cx {
	case planner.Complex:
		return "Excellent! That was a long sentence and you got every part of it right. Keep it up!"
	case planner.Medium:
		return "Well done! Your sentence is correct. Keep going!"
	default:
		return "That's right! Nicely said."
	}
}

// replyTemplates maps each feedback strategy to the renderer for its reply.
// Every renderer takes the first detected error. The templates are data;
// dispatch is the map lookup in replyFor.
var replyTemplates = map[planner.FeedbackStrategy]func(grammar.Error) string{
	planner.Correct: func(e grammar.Error) string {
		return fmt.Sprintf("Almost! Instead of %q, say %q.", e.Original, e.Correction)
	},
	planner.Explain: func(e grammar.Error) string {
		return fmt.Sprintf("Not quite. Instead of %q, say %q. %s", e.Original, e.Correction, e.Explanation)
	},
	planner.Drill: func(e grammar.Error) string {
		return fmt.Sprintf("We've seen this one before. %q should be %q. Try making a new sentence that uses %q.", e.Original, e.Correction, e.Correction)
	},
}

func replyFor(strategy planner.FeedbackStrategy, e grammar.Error) string {
	if tmpl, ok := replyTemplates[strategy]; ok {
		return tmpl(e)
	}
	// Correct covers any strategy without its own template, Praise included:
	// a strategy paired with errors still has to offer the fix.
	return replyTemplates[planner.Correct](e)
}
