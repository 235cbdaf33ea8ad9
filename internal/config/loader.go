package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known adapter names per capability.
// Used by [Validate] to warn about unrecognised adapter names.
var ValidProviderNames = map[string][]string{
	"transcription": {"whisper", "mock"},
	"grammar":       {"openai", "rules", "mock"},
	"pronunciation": {"phonetic", "mock"},
	"translation":   {"anyllm", "mock"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied. It is a convenience wrapper around
// [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, validates the result, and
// applies defaults. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("config: invalid log level %q", cfg.Server.LogLevel))
	}
	if cfg.Pipeline.CallTimeoutMs < 0 {
		errs = append(errs, errors.New("config: pipeline.call_timeout_ms must not be negative"))
	}
	if cfg.Pipeline.TotalBudgetMs < 0 {
		errs = append(errs, errors.New("config: pipeline.total_budget_ms must not be negative"))
	}
	if cfg.Pipeline.CallTimeoutMs > 0 && cfg.Pipeline.TotalBudgetMs > 0 &&
		cfg.Pipeline.CallTimeoutMs > cfg.Pipeline.TotalBudgetMs {
		errs = append(errs, errors.New("config: pipeline.call_timeout_ms must not exceed pipeline.total_budget_ms"))
	}
	if cfg.Session.HistoryCapacity < 0 {
		errs = append(errs, errors.New("config: session.history_capacity must not be negative"))
	}
	if t := cfg.Session.ExplainThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("config: session.explain_threshold must be in [0,1], got %v", t))
	}

	// Unknown adapter names are a warning, not an error: new adapters may be
	// registered by the application layer.
	warnUnknown("transcription", cfg.Providers.Transcription.Name)
	warnUnknown("grammar", cfg.Providers.Grammar.Name)
	warnUnknown("pronunciation", cfg.Providers.Pronunciation.Name)
	warnUnknown("translation", cfg.Providers.Translation.Name)

	return errors.Join(errs...)
}

func warnUnknown(kind, name string) {
	if name == "" {
		return
	}
	if !slices.Contains(ValidProviderNames[kind], name) {
		slog.Warn("unrecognised provider name", "kind", kind, "name", name)
	}
}
