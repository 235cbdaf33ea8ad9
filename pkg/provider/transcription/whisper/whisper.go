// Package whisper implements transcription.Provider with the whisper.cpp CGO
// bindings. The whisper.cpp static library (libwhisper.a) and headers
// (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH environment variables.
//
// The model is loaded once at construction and shared across all concurrent
// sessions; each Transcribe call creates its own whisper context, which is the
// unit of thread-isolation in whisper.cpp.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/fluentbyte/tutorcore/pkg/capability"
	"github.com/fluentbyte/tutorcore/pkg/provider/transcription"
)

const (
	defaultLanguage   = "en"
	defaultSampleRate = 16000
)

// Compile-time assertion that Provider satisfies transcription.Provider.
var _ transcription.Provider = (*Provider)(nil)

// Provider implements transcription.Provider using whisper.cpp.
type Provider struct {
	model      whisperlib.Model
	language   string
	sampleRate int
	channels   int
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the default BCP-47 language code used when Transcribe is
// called with an empty language. Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// WithSampleRate sets the expected PCM sample rate in Hz. Must match the
// audio delivered to Transcribe. Defaults to 16000.
func WithSampleRate(rate int) Option {
	return func(p *Provider) { p.sampleRate = rate }
}

// WithChannels sets the channel count of the delivered PCM. Multi-channel
// audio is down-mixed to mono before inference. Defaults to 1.
func WithChannels(n int) Option {
	return func(p *Provider) { p.channels = n }
}

// New creates a Provider that loads the whisper.cpp model from modelPath.
// The caller must call Close when the provider is no longer needed.
func New(modelPath string, opts ...Option) (*Provider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &Provider{
		model:      model,
		language:   defaultLanguage,
		sampleRate: defaultSampleRate,
		channels:   1,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Close releases the whisper model.
func (p *Provider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// Transcribe runs whisper.cpp inference over the complete utterance and
// returns the concatenated segment text with per-segment timing.
func (p *Provider) Transcribe(ctx context.Context, audio []byte, language string) (*transcription.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}
	if len(audio) == 0 {
		return &transcription.Result{}, nil
	}

	lang := language
	if lang == "" {
		lang = p.language
	}

	samples := pcmToFloat32Mono(audio, p.channels)

	// Each context is NOT thread-safe, but the model can be shared.
	wctx, err := p.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whisper: create context: %w", capability.ErrUnavailable)
	}
	if err := wctx.SetLanguage(lang); err != nil {
		slog.Warn("whisper: failed to set language, using default", "language", lang, "error", err)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper: process audio: %v: %w", err, capability.ErrUnavailable)
	}

	var (
		parts []string
		words []transcription.WordTimestamp
	)
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: read segment: %v: %w", err, capability.ErrUnavailable)
		}
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		words = append(words, transcription.WordTimestamp{
			Word:  text,
			Start: segment.Start,
			End:   segment.End,
		})
	}

	return &transcription.Result{
		Text: strings.Join(parts, " "),
		// whisper.cpp does not report an overall confidence; treat a
		// non-empty result as fully confident.
		Confidence: 1.0,
		Words:      words,
	}, nil
}
