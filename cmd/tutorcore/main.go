// Command tutorcore runs the AI tutoring pipeline as an interactive session:
// it reads learner utterances from stdin, runs each one through the
// orchestrator, and prints the tutor's reply.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fluentbyte/tutorcore/internal/config"
	"github.com/fluentbyte/tutorcore/internal/observe"
	"github.com/fluentbyte/tutorcore/internal/pipeline"
	"github.com/fluentbyte/tutorcore/internal/resilience"
	"github.com/fluentbyte/tutorcore/internal/session"
	"github.com/fluentbyte/tutorcore/internal/tutor"
	"github.com/fluentbyte/tutorcore/pkg/capability"
	"github.com/fluentbyte/tutorcore/pkg/provider/grammar"
	grammaropenai "github.com/fluentbyte/tutorcore/pkg/provider/grammar/openai"
	"github.com/fluentbyte/tutorcore/pkg/provider/grammar/rules"
	"github.com/fluentbyte/tutorcore/pkg/provider/pronunciation"
	"github.com/fluentbyte/tutorcore/pkg/provider/pronunciation/phonetic"
	"github.com/fluentbyte/tutorcore/pkg/provider/transcription"
	"github.com/fluentbyte/tutorcore/pkg/provider/transcription/whisper"
	"github.com/fluentbyte/tutorcore/pkg/provider/translation"
	"github.com/fluentbyte/tutorcore/pkg/provider/translation/anyllm"
	"github.com/fluentbyte/tutorcore/pkg/types"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	userID := flag.String("user", "learner", "learner identifier for this session")
	level := flag.String("level", "intermediate", "proficiency level: elementary, intermediate, upper-intermediate")
	flag.Parse()

	proficiency := types.ProficiencyLevel(*level)
	if !proficiency.IsValid() {
		fmt.Fprintf(os.Stderr, "tutorcore: unknown proficiency level %q\n", *level)
		return 1
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "tutorcore: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "tutorcore: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("tutorcore starting",
		"config", *configPath,
		"metrics_addr", cfg.Server.MetricsAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	shutdownObs, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "tutorcore",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownObs(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server error", "err", err)
			}
		}()
		defer srv.Close()
		slog.Info("metrics endpoint listening", "addr", cfg.Server.MetricsAddr)
	}

	// ── Capability adapters ───────────────────────────────────────────────────
	transcriber := buildTranscription(cfg)
	orch := pipeline.New(buildGrammar(cfg),
		pipeline.WithTranscription(transcriber),
		pipeline.WithPronunciation(buildPronunciation(cfg, transcriber)),
		pipeline.WithTranslation(buildTranslation(cfg)),
		pipeline.WithCallTimeout(cfg.Pipeline.CallTimeout()),
		pipeline.WithTotalBudget(cfg.Pipeline.TotalBudget()),
		pipeline.WithLanguage(cfg.Session.TargetLanguage),
	)

	// ── Session ───────────────────────────────────────────────────────────────
	profile := &types.LearnerProfile{
		UserID:      *userID,
		Proficiency: proficiency,
	}
	sess := session.NewContext(profile,
		session.WithCapacity(cfg.Session.HistoryCapacity),
		session.WithExplainThreshold(cfg.Session.ExplainThreshold),
	)

	metrics := observe.DefaultMetrics()
	metrics.ActiveSessions.Add(ctx, 1)
	defer metrics.ActiveSessions.Add(context.Background(), -1)

	fmt.Printf("tutorcore ready (%s, %s) — type a sentence, Ctrl+D to quit\n", *userID, proficiency)
	if err := repl(ctx, orch, sess, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("session error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// repl reads utterances line by line until EOF or cancellation.
func repl(ctx context.Context, orch *pipeline.Orchestrator, sess *session.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-scanErr:
			fmt.Println()
			return err
		case line := <-lines:
			if line == "" {
				continue
			}
			resp := orch.ProcessText(ctx, line, sess)
			printResponse(resp)
		}
	}
}

func printResponse(resp *tutor.Response) {
	fmt.Println(resp.TargetLanguageReply)
	if resp.NativeLanguageExplanation != "" {
		fmt.Printf("  (%s)\n", resp.NativeLanguageExplanation)
	}
	fmt.Printf("  [%s, confidence %.2f, %dms]\n", resp.Outcome, resp.Confidence, resp.LatencyMs)
}

// ── Adapter wiring ────────────────────────────────────────────────────────────

func buildTranscription(cfg *config.Config) *capability.Lazy[transcription.Provider] {
	entry := cfg.Providers.Transcription
	if entry.Name == "" {
		return nil
	}
	return capability.NewLazy("transcription:"+entry.Name, func(ctx context.Context) (transcription.Provider, error) {
		switch entry.Name {
		case "whisper":
			var opts []whisper.Option
			if lang := optString(entry.Options, "language"); lang != "" {
				opts = append(opts, whisper.WithLanguage(lang))
			}
			return whisper.New(entry.Model, opts...)
		default:
			return nil, fmt.Errorf("unknown transcription adapter %q", entry.Name)
		}
	})
}

func buildGrammar(cfg *config.Config) *capability.Lazy[grammar.Provider] {
	entry := cfg.Providers.Grammar
	return capability.NewLazy("grammar:"+entry.Name, func(ctx context.Context) (grammar.Provider, error) {
		switch entry.Name {
		case "rules", "":
			return rules.New(), nil
		case "openai":
			var opts []grammaropenai.Option
			if entry.BaseURL != "" {
				opts = append(opts, grammaropenai.WithBaseURL(entry.BaseURL))
			}
			primary, err := grammaropenai.New(entry.APIKey, entry.Model, opts...)
			if err != nil {
				return nil, err
			}
			// The LLM analyzer fails over to the local rule-based one so
			// grammar checking survives API outages.
			fb := resilience.NewGrammarFallback(primary, "openai", resilience.FallbackConfig{})
			fb.AddFallback("rules", rules.New())
			return fb, nil
		default:
			return nil, fmt.Errorf("unknown grammar adapter %q", entry.Name)
		}
	})
}

func buildPronunciation(cfg *config.Config, recognizer *capability.Lazy[transcription.Provider]) *capability.Lazy[pronunciation.Provider] {
	entry := cfg.Providers.Pronunciation
	if entry.Name == "" || recognizer == nil {
		return nil
	}
	return capability.NewLazy("pronunciation:"+entry.Name, func(ctx context.Context) (pronunciation.Provider, error) {
		switch entry.Name {
		case "phonetic":
			rec, err := recognizer.Get(ctx)
			if err != nil {
				return nil, err
			}
			var opts []phonetic.Option
			if lang := cfg.Session.TargetLanguage; lang != "" {
				opts = append(opts, phonetic.WithLanguage(lang))
			}
			return phonetic.New(rec, opts...), nil
		default:
			return nil, fmt.Errorf("unknown pronunciation adapter %q", entry.Name)
		}
	})
}

func buildTranslation(cfg *config.Config) *capability.Lazy[translation.Provider] {
	entry := cfg.Providers.Translation
	if entry.Name == "" {
		return nil
	}
	return capability.NewLazy("translation:"+entry.Name, func(ctx context.Context) (translation.Provider, error) {
		switch entry.Name {
		case "anyllm":
			backend := optString(entry.Options, "provider")
			if backend == "" {
				backend = "openai"
			}
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(backend, entry.Model, cfg.Session.NativeLanguage, opts...)
		default:
			return nil, fmt.Errorf("unknown translation adapter %q", entry.Name)
		}
	})
}

// optString fetches a string value from a provider options map.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	if v, ok := opts[key].(string); ok {
		return v
	}
	return ""
}

func newLogger(level config.LogLevel) *slog.Logger {
	var l slog.Level
	switch level {
	case config.LogDebug:
		l = slog.LevelDebug
	case config.LogWarn:
		l = slog.LevelWarn
	case config.LogError:
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
