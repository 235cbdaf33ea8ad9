// Package pipeline executes the per-turn tutoring flow: planning,
// transcription, concurrent analysis, aggregation, and composition.
//
// The orchestrator serves one turn at a time per session but many sessions
// concurrently; capability adapters are shared process-wide singletons behind
// single-flight lazy handles. The only synchronisation point within a turn is
// the fan-out in ProcessAudio, where grammar analysis and pronunciation
// scoring run concurrently and the orchestrator waits until both finish or
// the total turn budget elapses. That wait is a join, not a race: neither
// branch cancels the other, and whatever completed in time is incorporated.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluentbyte/tutorcore/internal/compose"
	"github.com/fluentbyte/tutorcore/internal/observe"
	"github.com/fluentbyte/tutorcore/internal/planner"
	"github.com/fluentbyte/tutorcore/internal/session"
	"github.com/fluentbyte/tutorcore/internal/tutor"
	"github.com/fluentbyte/tutorcore/pkg/capability"
	"github.com/fluentbyte/tutorcore/pkg/provider/grammar"
	"github.com/fluentbyte/tutorcore/pkg/provider/pronunciation"
	"github.com/fluentbyte/tutorcore/pkg/provider/transcription"
	"github.com/fluentbyte/tutorcore/pkg/provider/translation"
)

// ErrBudgetExceeded marks a capability result discarded because the total
// turn budget elapsed before the call returned.
var ErrBudgetExceeded = errors.New("pipeline: turn budget exceeded")

// apology is the canned reply returned when the mandatory grammar analysis
// is unavailable and the turn cannot be tutored.
const apology = "I'm sorry, I couldn't check that sentence right now. Let's try again in a moment."

const (
	defaultCallTimeout = 500 * time.Millisecond
	defaultTotalBudget = 2 * time.Second
	defaultLanguage    = "en"
)

// Orchestrator runs tutoring turns. Construct one per process with New and
// share it across sessions; all state lives in the session contexts passed
// to ProcessText and ProcessAudio.
type Orchestrator struct {
	planner *planner.Planner

	grammar       *capability.Lazy[grammar.Provider]
	transcriber   *capability.Lazy[transcription.Provider]
	pronunciation *capability.Lazy[pronunciation.Provider]
	translator    *capability.Lazy[translation.Provider]

	composer *compose.Composer

	callTimeout time.Duration
	totalBudget time.Duration
	language    string

	metrics *observe.Metrics
	log     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTranscription sets the transcription adapter handle, enabling
// ProcessAudio.
func WithTranscription(h *capability.Lazy[transcription.Provider]) Option {
	return func(o *Orchestrator) { o.transcriber = h }
}

// WithPronunciation sets the pronunciation scoring adapter handle.
func WithPronunciation(h *capability.Lazy[pronunciation.Provider]) Option {
	return func(o *Orchestrator) { o.pronunciation = h }
}

// WithTranslation sets the translation adapter handle used for
// native-language explanations.
func WithTranslation(h *capability.Lazy[translation.Provider]) Option {
	return func(o *Orchestrator) { o.translator = h }
}

// WithCallTimeout bounds each individual capability invocation.
// Default 500ms.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.callTimeout = d }
}

// WithTotalBudget bounds a whole turn; when it elapses, aggregation proceeds
// with whatever completed. Default 2s.
func WithTotalBudget(d time.Duration) Option {
	return func(o *Orchestrator) { o.totalBudget = d }
}

// WithLanguage sets the BCP-47 tag passed to transcription. Default "en".
func WithLanguage(tag string) Option {
	return func(o *Orchestrator) { o.language = tag }
}

// WithMetrics sets the metrics instance. Defaults to observe.DefaultMetrics().
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithLogger sets a fixed logger. When unset, turns log through
// observe.Logger so lines carry the active trace and span IDs.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// New creates an Orchestrator. The grammar handle is mandatory; every other
// capability is optional and the pipeline degrades without it.
func New(grammarHandle *capability.Lazy[grammar.Provider], opts ...Option) *Orchestrator {
	o := &Orchestrator{
		planner:     planner.New(),
		grammar:     grammarHandle,
		callTimeout: defaultCallTimeout,
		totalBudget: defaultTotalBudget,
		language:    defaultLanguage,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = observe.DefaultMetrics()
	}
	copts := []compose.Option{}
	if o.log != nil {
		copts = append(copts, compose.WithLogger(o.log))
	}
	o.composer = compose.New(&lazyTranslator{orch: o}, copts...)
	return o
}

// ProcessText runs one text turn. It always returns a response: capability
// failures surface as a degraded or failed outcome, never as a panic or an
// error to the caller.
func (o *Orchestrator) ProcessText(ctx context.Context, userText string, sess *session.Context) *tutor.Response {
	return o.run(ctx, "text", userText, nil, sess)
}

// ProcessAudio runs one audio turn: transcription first, then grammar
// analysis and pronunciation scoring concurrently over the transcript.
func (o *Orchestrator) ProcessAudio(ctx context.Context, audio []byte, sess *session.Context) *tutor.Response {
	return o.run(ctx, "audio", "", audio, sess)
}

func (o *Orchestrator) run(ctx context.Context, input, userText string, audio []byte, sess *session.Context) *tutor.Response {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "pipeline.turn",
		trace.WithAttributes(attribute.String("input", input)))
	defer span.End()

	budgetCtx, cancel := context.WithTimeout(ctx, o.totalBudget)
	defer cancel()

	hasAudio := input == "audio"
	plan := o.planner.Analyze(userText, hasAudio, sess)
	summary := sess.Summary()

	used := capability.NewSet()

	// Transcription gates everything for audio turns. Its failure leaves
	// nothing to analyse, so the turn fails like a grammar outage would.
	if plan.NeedsTranscription {
		tr, err := o.transcribe(budgetCtx, audio)
		if err != nil {
			o.logger(ctx).WarnContext(ctx, "transcription failed, turn aborted", "error", err)
			return o.fail(ctx, input, start)
		}
		userText = tr.Text
		plan.InputComplexity = planner.Classify(userText)
		used.Add(capability.Transcription)
	}

	analysis, pron := o.analyze(budgetCtx, plan, userText, audio, summary)
	if analysis == nil {
		return o.fail(ctx, input, start)
	}
	used.Add(capability.GrammarAnalysis)

	agg := tutor.AnalysisResult{
		FluencyScore:    analysis.FluencyScore,
		VocabularyLevel: analysis.VocabularyLevel,
		GrammarErrors:   analysis.Errors,
	}
	degraded := false
	if plan.Parallel.Has(capability.PronunciationScoring) {
		if pron != nil {
			agg.Pronunciation = pron
			used.Add(capability.PronunciationScoring)
		} else {
			degraded = true
		}
	}

	plan = plan.WithStrategy(o.planner.Strategy(sess.Profile(), agg.GrammarErrors))
	conf := confidence(agg)

	out := o.composer.Compose(budgetCtx, userText, agg, plan)
	if out.TranslationUsed {
		used.Add(capability.Translation)
	}
	if out.TranslationFailed {
		degraded = true
	}

	sess.AddTurn(session.Turn{
		UserMessage: userText,
		TutorReply:  out.Reply,
		Confidence:  conf,
		Timestamp:   time.Now(),
	})

	outcome := tutor.OutcomeDone
	if degraded {
		outcome = tutor.OutcomeDegraded
	}
	elapsed := time.Since(start)
	o.metrics.RecordTurn(ctx, input, string(outcome), elapsed.Seconds(), conf)
	o.logger(ctx).InfoContext(ctx, "turn completed",
		"input", input,
		"outcome", string(outcome),
		"strategy", string(plan.Strategy),
		"errors", len(agg.GrammarErrors),
		"confidence", conf,
		"latency_ms", elapsed.Milliseconds())

	return &tutor.Response{
		Analysis:                  agg,
		TargetLanguageReply:       out.Reply,
		NativeLanguageExplanation: out.NativeExplanation,
		Confidence:                conf,
		LatencyMs:                 elapsed.Milliseconds(),
		CapabilitiesUsed:          used,
		Outcome:                   outcome,
	}
}

// logger returns the logger for the turn in ctx: the injected one when set,
// enriched with the trace ID, otherwise the contextual logger from observe.
func (o *Orchestrator) logger(ctx context.Context) *slog.Logger {
	if o.log == nil {
		return observe.Logger(ctx)
	}
	if cid := observe.CorrelationID(ctx); cid != "" {
		return o.log.With(slog.String("trace_id", cid))
	}
	return o.log
}

// fail builds the canned apology response for a turn whose mandatory
// capability was unavailable. The session history is left untouched.
func (o *Orchestrator) fail(ctx context.Context, input string, start time.Time) *tutor.Response {
	elapsed := time.Since(start)
	o.metrics.RecordTurn(ctx, input, string(tutor.OutcomeFailed), elapsed.Seconds(), 0)
	return &tutor.Response{
		TargetLanguageReply: apology,
		Confidence:          0,
		LatencyMs:           elapsed.Milliseconds(),
		CapabilitiesUsed:    capability.NewSet(),
		Outcome:             tutor.OutcomeFailed,
	}
}

// branchResult collects the fan-out results. Once the orchestrator seals it,
// late writes from abandoned branches are discarded.
type branchResult struct {
	mu     sync.Mutex
	sealed bool

	analysis *grammar.Analysis
	pron     *pronunciation.Result
}

func (r *branchResult) setAnalysis(a *grammar.Analysis) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sealed {
		r.analysis = a
	}
}

func (r *branchResult) setPron(p *pronunciation.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sealed {
		r.pron = p
	}
}

func (r *branchResult) seal() (*grammar.Analysis, *pronunciation.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
	return r.analysis, r.pron
}

// analyze runs the analysis phase of the plan: grammar always, pronunciation
// concurrently when planned. It returns the grammar verdict (nil when the
// mandatory capability failed or the budget expired first) and the
// pronunciation result (nil when absent for any reason).
func (o *Orchestrator) analyze(ctx context.Context, plan planner.TaskPlan, text string, audio []byte, summary string) (*grammar.Analysis, *pronunciation.Result) {
	res := &branchResult{}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a, err := o.runGrammar(ctx, text, summary, plan)
		if err != nil {
			o.logger(ctx).WarnContext(ctx, "grammar analysis failed", "error", err)
			return
		}
		res.setAnalysis(a)
	}()

	if plan.Parallel.Has(capability.PronunciationScoring) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := o.runPronunciation(ctx, audio, text)
			if err != nil {
				o.logger(ctx).WarnContext(ctx, "pronunciation scoring degraded", "error", err)
				return
			}
			res.setPron(p)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// Budget expired: aggregate whatever completed. The in-flight
		// branches see the cancelled context and wind down on their own.
		o.logger(ctx).WarnContext(ctx, "analysis join cut short", "error", ErrBudgetExceeded)
	}
	return res.seal()
}

// ─── capability invocations ───

func (o *Orchestrator) runGrammar(ctx context.Context, text, summary string, plan planner.TaskPlan) (*grammar.Analysis, error) {
	start := time.Now()
	p, err := o.grammar.Get(ctx)
	if err != nil {
		o.record(ctx, capability.GrammarAnalysis, start, err)
		return nil, fmt.Errorf("pipeline: grammar adapter: %w", err)
	}
	cctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	a, err := p.Analyze(cctx, text, summary, plan.Proficiency)
	err = normalize(err)
	o.record(ctx, capability.GrammarAnalysis, start, err)
	if err != nil {
		return nil, fmt.Errorf("pipeline: grammar analysis: %w", err)
	}
	return a, nil
}

func (o *Orchestrator) runPronunciation(ctx context.Context, audio []byte, text string) (*pronunciation.Result, error) {
	if o.pronunciation == nil {
		return nil, fmt.Errorf("pipeline: pronunciation: %w", capability.ErrUnavailable)
	}
	start := time.Now()
	p, err := o.pronunciation.Get(ctx)
	if err != nil {
		o.record(ctx, capability.PronunciationScoring, start, err)
		return nil, fmt.Errorf("pipeline: pronunciation adapter: %w", err)
	}
	cctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	r, err := p.Score(cctx, audio, text)
	err = normalize(err)
	o.record(ctx, capability.PronunciationScoring, start, err)
	if err != nil {
		return nil, fmt.Errorf("pipeline: pronunciation scoring: %w", err)
	}
	return r, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, audio []byte) (*transcription.Result, error) {
	if o.transcriber == nil {
		return nil, fmt.Errorf("pipeline: transcription: %w", capability.ErrUnavailable)
	}
	start := time.Now()
	p, err := o.transcriber.Get(ctx)
	if err != nil {
		o.record(ctx, capability.Transcription, start, err)
		return nil, fmt.Errorf("pipeline: transcription adapter: %w", err)
	}
	cctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	r, err := p.Transcribe(cctx, audio, o.language)
	err = normalize(err)
	o.record(ctx, capability.Transcription, start, err)
	if err != nil {
		return nil, fmt.Errorf("pipeline: transcription: %w", err)
	}
	return r, nil
}

// lazyTranslator adapts the lazy translation handle to translation.Provider
// for the composer, applying the per-call timeout.
type lazyTranslator struct {
	orch *Orchestrator
}

var _ translation.Provider = (*lazyTranslator)(nil)

func (lt *lazyTranslator) Explain(ctx context.Context, text string, analysis *grammar.Analysis) (string, error) {
	o := lt.orch
	if o.translator == nil {
		return "", fmt.Errorf("pipeline: translation: %w", capability.ErrUnavailable)
	}
	start := time.Now()
	p, err := o.translator.Get(ctx)
	if err != nil {
		o.record(ctx, capability.Translation, start, err)
		return "", fmt.Errorf("pipeline: translation adapter: %w", err)
	}
	cctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	out, err := p.Explain(cctx, text, analysis)
	err = normalize(err)
	o.record(ctx, capability.Translation, start, err)
	if err != nil {
		return "", fmt.Errorf("pipeline: translation: %w", err)
	}
	return out, nil
}

// normalize folds context deadline errors into the capability taxonomy so
// aggregation treats an adapter that honoured its deadline the same as one
// that reported the timeout itself.
func normalize(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return capability.ErrTimeout
	}
	return err
}

func (o *Orchestrator) record(ctx context.Context, kind capability.Kind, start time.Time, err error) {
	o.metrics.RecordCapabilityDuration(ctx, kind.String(), time.Since(start).Seconds())
	if err == nil {
		o.metrics.RecordCapabilityRequest(ctx, kind.String(), "ok")
		return
	}
	o.metrics.RecordCapabilityRequest(ctx, kind.String(), "error")
	switch {
	case errors.Is(err, capability.ErrTimeout):
		o.metrics.RecordCapabilityError(ctx, kind.String(), "timeout")
	default:
		o.metrics.RecordCapabilityError(ctx, kind.String(), "unavailable")
	}
}

// confidence computes the turn confidence: 0.9, minus 0.1 per grammar error,
// minus 0.1 when fluency is known and below 0.7, minus 0.1 when
// pronunciation accuracy is known and below 0.7, clamped to [0,1].
func confidence(a tutor.AnalysisResult) float64 {
	c := 0.9 - 0.1*float64(len(a.GrammarErrors))
	if a.FluencyScore != nil && *a.FluencyScore < 0.7 {
		c -= 0.1
	}
	if a.Pronunciation != nil && a.Pronunciation.Accuracy < 0.7 {
		c -= 0.1
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
