// Package phonetic implements pronunciation.Provider by comparing a strict
// second-pass recognition of the learner's audio against the reference
// transcript.
//
// The scorer re-transcribes the audio with a recognizer tuned for literal
// output and aligns the two word sequences. Each word pair is scored with
// Double Metaphone phonetic encoding plus Jaro-Winkler string similarity: a
// word whose strict recognition shares a phonetic code with the reference is
// considered well pronounced even when the spelling differs; a word with no
// phonetic overlap is scored by string similarity alone, which penalises it
// heavily. Prosody is estimated from the energy contour of the raw audio.
package phonetic

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/fluentbyte/tutorcore/pkg/provider/pronunciation"
	"github.com/fluentbyte/tutorcore/pkg/provider/transcription"
)

const (
	// defaultErrorThreshold is the per-word score below which a word is
	// reported as a phoneme error.
	defaultErrorThreshold = 0.80

	// frameMs is the analysis frame length for the prosody energy contour.
	frameMs = 20
)

// Compile-time assertion that Scorer satisfies pronunciation.Provider.
var _ pronunciation.Provider = (*Scorer)(nil)

// Scorer implements pronunciation.Provider. It is read-only after
// construction and safe for concurrent use.
type Scorer struct {
	recognizer     transcription.Provider
	language       string
	sampleRate     int
	errorThreshold float64
}

// Option is a functional option for configuring a Scorer.
type Option func(*Scorer)

// WithLanguage sets the language tag passed to the recognizer. Default "en".
func WithLanguage(lang string) Option {
	return func(s *Scorer) { s.language = lang }
}

// WithSampleRate sets the PCM sample rate used for prosody analysis.
// Default 16000.
func WithSampleRate(rate int) Option {
	return func(s *Scorer) { s.sampleRate = rate }
}

// WithErrorThreshold sets the per-word score below which a word is reported
// as a phoneme error. Default 0.80.
func WithErrorThreshold(t float64) Option {
	return func(s *Scorer) { s.errorThreshold = t }
}

// New returns a Scorer backed by the given recognizer.
func New(recognizer transcription.Provider, opts ...Option) *Scorer {
	s := &Scorer{
		recognizer:     recognizer,
		language:       "en",
		sampleRate:     16000,
		errorThreshold: defaultErrorThreshold,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Score implements pronunciation.Provider.
func (s *Scorer) Score(ctx context.Context, audio []byte, transcribedText string) (*pronunciation.Result, error) {
	strict, err := s.recognizer.Transcribe(ctx, audio, s.language)
	if err != nil {
		return nil, fmt.Errorf("phonetic: strict recognition: %w", err)
	}

	expected := words(transcribedText)
	actual := words(strict.Text)

	accuracy, phonemeErrs := s.alignAndScore(expected, actual)
	return &pronunciation.Result{
		Accuracy:      accuracy,
		PhonemeErrors: phonemeErrs,
		ProsodyScore:  prosodyScore(audio, s.sampleRate),
	}, nil
}

// alignAndScore compares the two word sequences positionally and returns the
// mean per-word score plus the words falling below the error threshold.
func (s *Scorer) alignAndScore(expected, actual []string) (float64, []pronunciation.PhonemeError) {
	if len(expected) == 0 {
		return 1, nil
	}

	var (
		total float64
		errs  []pronunciation.PhonemeError
	)
	for i, exp := range expected {
		var act string
		if i < len(actual) {
			act = actual[i]
		}
		score := wordScore(exp, act)
		total += score

		if score < s.errorThreshold {
			expPrimary, _ := matchr.DoubleMetaphone(exp)
			actPrimary, _ := matchr.DoubleMetaphone(act)
			errs = append(errs, pronunciation.PhonemeError{
				Word:     exp,
				Expected: expPrimary,
				Actual:   actPrimary,
				Score:    score,
			})
		}
	}

	// Extra recognised words beyond the reference dilute the accuracy.
	n := len(expected)
	if len(actual) > n {
		n = len(actual)
	}
	return total / float64(n), errs
}

// wordScore rates how closely act realises exp, in [0,1].
func wordScore(exp, act string) float64 {
	if act == "" {
		return 0
	}
	if strings.EqualFold(exp, act) {
		return 1
	}

	sim := matchr.JaroWinkler(exp, act, false)

	expP, expS := matchr.DoubleMetaphone(exp)
	actP, actS := matchr.DoubleMetaphone(act)
	if codesOverlap(expP, expS, actP, actS) {
		// Phonetically equivalent: score by spelling similarity but never
		// below the error threshold's neighbourhood.
		if sim < 0.85 {
			return 0.85
		}
		return sim
	}
	// No phonetic overlap: the word was realised as something else entirely.
	return sim * 0.5
}

func codesOverlap(p1, s1, p2, s2 string) bool {
	for _, a := range []string{p1, s1} {
		if a == "" {
			continue
		}
		if a == p2 || (s2 != "" && a == s2) {
			return true
		}
	}
	return false
}

// words lowercases s and splits it into punctuation-stripped tokens.
func words(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// prosodyScore estimates rhythm quality from the variance of the frame-level
// energy contour. A flat or silent contour scores low; a natural alternation
// of stressed and unstressed frames scores high.
func prosodyScore(pcm []byte, sampleRate int) float64 {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	frameBytes := sampleRate * 2 * frameMs / 1000
	if frameBytes <= 0 || len(pcm) < frameBytes {
		return 0
	}

	var energies []float64
	for off := 0; off+frameBytes <= len(pcm); off += frameBytes {
		energies = append(energies, rms(pcm[off:off+frameBytes]))
	}
	if len(energies) < 2 {
		return 0
	}

	mean := 0.0
	for _, e := range energies {
		mean += e
	}
	mean /= float64(len(energies))
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, e := range energies {
		d := e - mean
		variance += d * d
	}
	variance /= float64(len(energies))

	// Coefficient of variation mapped onto [0,1]. Natural speech sits around
	// cv ~ 0.5–1.0; monotone or clipped audio falls outside that band.
	cv := math.Sqrt(variance) / mean
	score := 1 - math.Abs(cv-0.75)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// rms computes the root-mean-square amplitude of 16-bit little-endian PCM,
// normalised to [0,1].
func rms(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := range n {
		sample := int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8)
		v := float64(sample) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}
