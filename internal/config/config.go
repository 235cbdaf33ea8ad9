// Package config provides the configuration schema and loader for the
// tutoring pipeline.
package config

import "time"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Session   SessionConfig   `yaml:"session"`
}

// ServerConfig holds process-wide settings.
type ServerConfig struct {
	// MetricsAddr is the TCP address the Prometheus /metrics endpoint
	// listens on (e.g., ":9090"). Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig declares which adapter implementation to use for each
// capability.
type ProvidersConfig struct {
	Transcription ProviderEntry `yaml:"transcription"`
	Grammar       ProviderEntry `yaml:"grammar"`
	Pronunciation ProviderEntry `yaml:"pronunciation"`
	Translation   ProviderEntry `yaml:"translation"`
}

// ProviderEntry is the common configuration block shared by all capability
// adapters.
type ProviderEntry struct {
	// Name selects the adapter implementation (e.g., "whisper", "openai",
	// "rules", "phonetic", "anyllm").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the adapter's API, if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the adapter's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the adapter (e.g., "gpt-4o-mini",
	// "ggml-base.en.bin").
	Model string `yaml:"model"`

	// Options holds adapter-specific configuration values not covered by the
	// standard fields above.
	Options map[string]any `yaml:"options"`
}

// PipelineConfig holds the orchestrator's timing knobs. Zero values select
// the documented defaults.
type PipelineConfig struct {
	// CallTimeoutMs bounds each individual capability invocation, in
	// milliseconds. Default: 500.
	CallTimeoutMs int `yaml:"call_timeout_ms"`

	// TotalBudgetMs bounds a whole turn, in milliseconds; when it elapses,
	// aggregation proceeds with whatever completed. Default: 2000.
	TotalBudgetMs int `yaml:"total_budget_ms"`
}

// CallTimeout returns CallTimeoutMs as a time.Duration.
func (p PipelineConfig) CallTimeout() time.Duration {
	return time.Duration(p.CallTimeoutMs) * time.Millisecond
}

// TotalBudget returns TotalBudgetMs as a time.Duration.
func (p PipelineConfig) TotalBudget() time.Duration {
	return time.Duration(p.TotalBudgetMs) * time.Millisecond
}

// SessionConfig holds per-session conversation settings. Zero values select
// the documented defaults.
type SessionConfig struct {
	// HistoryCapacity is the number of turns retained in the conversation
	// context; the oldest turn is evicted first. Default: 5.
	HistoryCapacity int `yaml:"history_capacity"`

	// ExplainThreshold is the turn confidence below which the next reply
	// carries a native-language explanation regardless of proficiency.
	// Default: 0.6.
	ExplainThreshold float64 `yaml:"explain_threshold"`

	// NativeLanguage is the learner's native language, named in English.
	// Used by the translation adapter. Default: "English".
	NativeLanguage string `yaml:"native_language"`

	// TargetLanguage is the BCP-47 tag of the language being learned,
	// passed to the transcription adapter. Default: "en".
	TargetLanguage string `yaml:"target_language"`
}

// Defaults for the tunables above.
const (
	DefaultCallTimeoutMs    = 500
	DefaultTotalBudgetMs    = 2000
	DefaultHistoryCapacity  = 5
	DefaultExplainThreshold = 0.6
)

// ApplyDefaults fills zero-valued tunables with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = LogInfo
	}
	if c.Pipeline.CallTimeoutMs <= 0 {
		c.Pipeline.CallTimeoutMs = DefaultCallTimeoutMs
	}
	if c.Pipeline.TotalBudgetMs <= 0 {
		c.Pipeline.TotalBudgetMs = DefaultTotalBudgetMs
	}
	if c.Session.HistoryCapacity <= 0 {
		c.Session.HistoryCapacity = DefaultHistoryCapacity
	}
	if c.Session.ExplainThreshold <= 0 {
		c.Session.ExplainThreshold = DefaultExplainThreshold
	}
	if c.Session.NativeLanguage == "" {
		c.Session.NativeLanguage = "English"
	}
	if c.Session.TargetLanguage == "" {
		c.Session.TargetLanguage = "en"
	}
}
