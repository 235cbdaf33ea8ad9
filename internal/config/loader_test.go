package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/fluentbyte/tutorcore/internal/config"
)

const validYAML = `
server:
  metrics_addr: ":9090"
  log_level: debug
providers:
  transcription:
    name: whisper
    model: ggml-base.en.bin
  grammar:
    name: openai
    api_key: sk-test
    model: gpt-4o-mini
  pronunciation:
    name: phonetic
  translation:
    name: anyllm
    model: gpt-4o-mini
pipeline:
  call_timeout_ms: 750
  total_budget_ms: 3000
session:
  history_capacity: 8
  explain_threshold: 0.5
  native_language: Spanish
  target_language: en
`

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: unexpected error: %v", err)
	}

	if cfg.Server.MetricsAddr != ":9090" {
		t.Errorf("metrics_addr: got %q", cfg.Server.MetricsAddr)
	}
	if cfg.Pipeline.CallTimeout() != 750*time.Millisecond {
		t.Errorf("call_timeout: got %v", cfg.Pipeline.CallTimeout())
	}
	if cfg.Pipeline.TotalBudget() != 3*time.Second {
		t.Errorf("total_budget: got %v", cfg.Pipeline.TotalBudget())
	}
	if cfg.Session.HistoryCapacity != 8 {
		t.Errorf("history_capacity: got %d", cfg.Session.HistoryCapacity)
	}
	if cfg.Session.NativeLanguage != "Spanish" {
		t.Errorf("native_language: got %q", cfg.Session.NativeLanguage)
	}
	if cfg.Providers.Grammar.Name != "openai" {
		t.Errorf("grammar provider: got %q", cfg.Providers.Grammar.Name)
	}
}

func TestLoadFromReader_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader("providers:\n  grammar:\n    name: rules\n"))
	if err != nil {
		t.Fatalf("LoadFromReader: unexpected error: %v", err)
	}

	if cfg.Pipeline.CallTimeoutMs != config.DefaultCallTimeoutMs {
		t.Errorf("call_timeout default: got %v", cfg.Pipeline.CallTimeoutMs)
	}
	if cfg.Pipeline.TotalBudgetMs != config.DefaultTotalBudgetMs {
		t.Errorf("total_budget default: got %v", cfg.Pipeline.TotalBudgetMs)
	}
	if cfg.Session.HistoryCapacity != config.DefaultHistoryCapacity {
		t.Errorf("history_capacity default: got %d", cfg.Session.HistoryCapacity)
	}
	if cfg.Session.ExplainThreshold != config.DefaultExplainThreshold {
		t.Errorf("explain_threshold default: got %v", cfg.Session.ExplainThreshold)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("log_level default: got %q", cfg.Server.LogLevel)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()

	if _, err := config.LoadFromReader(strings.NewReader("serverr:\n  log_level: info\n")); err == nil {
		t.Fatal("LoadFromReader: want error for unknown field, got nil")
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		yaml string
	}{
		{"bad log level", "server:\n  log_level: loud\n"},
		{"negative timeout", "pipeline:\n  call_timeout_ms: -1\n"},
		{"call exceeds budget", "pipeline:\n  call_timeout_ms: 5000\n  total_budget_ms: 2000\n"},
		{"threshold out of range", "session:\n  explain_threshold: 1.5\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := config.LoadFromReader(strings.NewReader(tc.yaml)); err == nil {
				t.Errorf("LoadFromReader(%q): want error, got nil", tc.yaml)
			}
		})
	}
}
