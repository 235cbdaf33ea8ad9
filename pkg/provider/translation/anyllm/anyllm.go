// Package anyllm implements translation.Provider on top of
// github.com/mozilla-ai/any-llm-go, so the native-language explanation can be
// served by any supported LLM backend (OpenAI, Anthropic, Gemini, Ollama and
// others) without coupling to a specific SDK.
package anyllm

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/fluentbyte/tutorcore/pkg/capability"
	"github.com/fluentbyte/tutorcore/pkg/provider/grammar"
	"github.com/fluentbyte/tutorcore/pkg/provider/translation"
)

// Compile-time assertion that Provider satisfies translation.Provider.
var _ translation.Provider = (*Provider)(nil)

// Provider implements translation.Provider by prompting an LLM backend.
type Provider struct {
	backend        anyllmlib.Provider
	model          string
	nativeLanguage string
}

// New creates a Provider backed by the given LLM provider name.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama".
// nativeLanguage is the learner's native language, named in English
// (e.g. "Russian", "Spanish"); explanations are produced in that language.
//
// opts are any-llm-go configuration options (e.g., anyllmlib.WithAPIKey). If
// no API key option is provided, the backend falls back to its environment
// variable (OPENAI_API_KEY, ANTHROPIC_API_KEY, ...).
func New(providerName, model, nativeLanguage string, opts ...anyllmlib.Option) (*Provider, error) {
	if model == "" {
		return nil, fmt.Errorf("anyllm: model must not be empty")
	}
	if nativeLanguage == "" {
		return nil, fmt.Errorf("anyllm: nativeLanguage must not be empty")
	}

	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", providerName, err)
	}
	return &Provider{backend: backend, model: model, nativeLanguage: nativeLanguage}, nil
}

// createBackend creates the underlying any-llm-go provider.
func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama", providerName)
	}
}

// Explain implements translation.Provider.
func (p *Provider) Explain(ctx context.Context, text string, analysis *grammar.Analysis) (string, error) {
	params := anyllmlib.CompletionParams{
		Model: p.model,
		Messages: []anyllmlib.Message{
			{
				Role: anyllmlib.RoleSystem,
				Content: fmt.Sprintf(
					"You are a bilingual language tutor. Explain the grammar feedback below to the learner in %s, in two sentences or fewer. Respond with the explanation only.",
					p.nativeLanguage,
				),
			},
			{Role: anyllmlib.RoleUser, Content: buildPrompt(text, analysis)},
		},
	}

	resp, err := p.backend.Completion(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("anyllm: explain: %w", capability.ErrTimeout)
		}
		return "", fmt.Errorf("anyllm: explain: %v: %w", err, capability.ErrUnavailable)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("anyllm: empty choices: %w", capability.ErrUnavailable)
	}

	return strings.TrimSpace(resp.Choices[0].Message.ContentString()), nil
}

// buildPrompt renders the utterance and its detected defects for the model.
func buildPrompt(text string, analysis *grammar.Analysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Learner wrote: %q\n", text)
	if analysis == nil || len(analysis.Errors) == 0 {
		sb.WriteString("No errors were detected.")
		return sb.String()
	}
	sb.WriteString("Detected errors:\n")
	for _, e := range analysis.Errors {
		fmt.Fprintf(&sb, "- [%s] %q should be %q (%s)\n", e.Kind, e.Original, e.Correction, e.Explanation)
	}
	return sb.String()
}
