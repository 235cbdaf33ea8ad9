// Package openai implements grammar.Provider using the OpenAI chat
// completions API. The model is prompted to return a strict JSON verdict that
// is decoded into a grammar.Analysis.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/fluentbyte/tutorcore/pkg/capability"
	"github.com/fluentbyte/tutorcore/pkg/provider/grammar"
	"github.com/fluentbyte/tutorcore/pkg/types"
)

// systemPrompt instructs the model to act as a grammar analyzer with a fixed
// JSON output contract. Keep the schema in sync with the verdict type below.
const systemPrompt = `You are a grammar analysis service for language learners.
Analyse the learner utterance and respond with ONLY a JSON object, no prose:
{
  "fluency_score": <float 0..1>,
  "vocabulary_level": "<CEFR label like A2, B1, B2>",
  "errors": [
    {
      "kind": "<category, e.g. verb-form, article, word-order>",
      "original": "<defective fragment exactly as written>",
      "correction": "<corrected fragment>",
      "explanation": "<one-sentence explanation in the target language>"
    }
  ]
}
List errors in the order they appear in the utterance. An empty errors array
means the utterance is correct.`

// Compile-time assertion that Provider satisfies grammar.Provider.
var _ grammar.Provider = (*Provider)(nil)

// Provider implements grammar.Provider using the OpenAI API.
type Provider struct {
	client oai.Client
	model  string
}

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// New constructs a new OpenAI-backed grammar Provider.
func New(apiKey, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	return &Provider{client: oai.NewClient(reqOpts...), model: model}, nil
}

// verdict mirrors the JSON contract in systemPrompt.
type verdict struct {
	FluencyScore    float64 `json:"fluency_score"`
	VocabularyLevel string  `json:"vocabulary_level"`
	Errors          []struct {
		Kind        string `json:"kind"`
		Original    string `json:"original"`
		Correction  string `json:"correction"`
		Explanation string `json:"explanation"`
	} `json:"errors"`
}

// Analyze implements grammar.Provider.
func (p *Provider) Analyze(ctx context.Context, text, contextSummary string, proficiency types.ProficiencyLevel) (*grammar.Analysis, error) {
	var sb strings.Builder
	if contextSummary != "" {
		sb.WriteString("Conversation so far:\n")
		sb.WriteString(contextSummary)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "Learner level: %s\nUtterance: %s", proficiency, text)

	resp, err := p.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: oai.ChatModel(p.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(sb.String()),
		},
		Temperature: oai.Float(0),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("openai: analyze: %w", capability.ErrTimeout)
		}
		return nil, fmt.Errorf("openai: analyze: %v: %w", err, capability.ErrUnavailable)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices: %w", capability.ErrUnavailable)
	}

	return parseVerdict(resp.Choices[0].Message.Content, text)
}

// parseVerdict decodes the model's JSON verdict into a grammar.Analysis,
// locating each error's span within source where possible.
func parseVerdict(content, source string) (*grammar.Analysis, error) {
	raw := stripFences(content)

	var v verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("openai: decode verdict: %v: %w", err, capability.ErrUnavailable)
	}

	analysis := &grammar.Analysis{
		FluencyScore:    &v.FluencyScore,
		VocabularyLevel: v.VocabularyLevel,
	}
	searchFrom := 0
	for _, e := range v.Errors {
		ge := grammar.Error{
			Kind:        e.Kind,
			Original:    e.Original,
			Correction:  e.Correction,
			Explanation: e.Explanation,
		}
		// Errors arrive in document order, so advance the search cursor to
		// keep repeated fragments pointing at distinct spans.
		if idx := strings.Index(source[searchFrom:], e.Original); idx >= 0 && e.Original != "" {
			start := searchFrom + idx
			ge.Span = &grammar.Span{Start: start, End: start + len(e.Original)}
			searchFrom = start + len(e.Original)
		}
		analysis.Errors = append(analysis.Errors, ge)
	}
	return analysis, nil
}

// stripFences removes a Markdown code fence around s, if present. Some models
// fence JSON output despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
