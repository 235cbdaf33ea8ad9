package phonetic_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/fluentbyte/tutorcore/pkg/provider/pronunciation/phonetic"
	"github.com/fluentbyte/tutorcore/pkg/provider/transcription"
	transcriptionmock "github.com/fluentbyte/tutorcore/pkg/provider/transcription/mock"
)

// sineAudio returns 16-bit PCM with an amplitude-modulated tone, enough to
// produce a speech-like energy contour for prosody analysis.
func sineAudio(ms, sampleRate int) []byte {
	n := sampleRate * ms / 1000
	pcm := make([]byte, n*2)
	for i := range n {
		t := float64(i) / float64(sampleRate)
		env := 0.2 + 0.8*math.Abs(math.Sin(2*math.Pi*3*t))
		v := int16(env * 12000 * math.Sin(2*math.Pi*220*t))
		pcm[i*2] = byte(uint16(v))
		pcm[i*2+1] = byte(uint16(v) >> 8)
	}
	return pcm
}

func TestScore_PerfectMatch(t *testing.T) {
	t.Parallel()

	rec := &transcriptionmock.Provider{
		Result: &transcription.Result{Text: "I went to the kitchen", Confidence: 1},
	}
	s := phonetic.New(rec)

	res, err := s.Score(context.Background(), sineAudio(500, 16000), "I went to the kitchen")
	if err != nil {
		t.Fatalf("Score: unexpected error: %v", err)
	}
	if res.Accuracy != 1 {
		t.Errorf("accuracy: want 1, got %f", res.Accuracy)
	}
	if len(res.PhonemeErrors) != 0 {
		t.Errorf("phoneme errors: want 0, got %d", len(res.PhonemeErrors))
	}
	if res.ProsodyScore <= 0 {
		t.Errorf("prosody: want > 0, got %f", res.ProsodyScore)
	}
}

func TestScore_PhoneticEquivalentSpelling(t *testing.T) {
	t.Parallel()

	// "nite" realises "night" phonetically; the word must not be flagged.
	rec := &transcriptionmock.Provider{
		Result: &transcription.Result{Text: "good nite", Confidence: 1},
	}
	s := phonetic.New(rec)

	res, err := s.Score(context.Background(), sineAudio(300, 16000), "good night")
	if err != nil {
		t.Fatalf("Score: unexpected error: %v", err)
	}
	if res.Accuracy < 0.85 {
		t.Errorf("accuracy: want >= 0.85, got %f", res.Accuracy)
	}
	if len(res.PhonemeErrors) != 0 {
		t.Errorf("phoneme errors: want 0, got %+v", res.PhonemeErrors)
	}
}

func TestScore_Mispronunciation(t *testing.T) {
	t.Parallel()

	rec := &transcriptionmock.Provider{
		Result: &transcription.Result{Text: "I want to the bitchen", Confidence: 1},
	}
	s := phonetic.New(rec)

	res, err := s.Score(context.Background(), sineAudio(300, 16000), "I went to the kitchen")
	if err != nil {
		t.Fatalf("Score: unexpected error: %v", err)
	}
	if res.Accuracy >= 1 {
		t.Errorf("accuracy: want < 1, got %f", res.Accuracy)
	}
	if len(res.PhonemeErrors) == 0 {
		t.Error("phoneme errors: want at least one flagged word")
	}
}

func TestScore_MissingWords(t *testing.T) {
	t.Parallel()

	rec := &transcriptionmock.Provider{
		Result: &transcription.Result{Text: "I went", Confidence: 1},
	}
	s := phonetic.New(rec)

	res, err := s.Score(context.Background(), sineAudio(300, 16000), "I went to the kitchen")
	if err != nil {
		t.Fatalf("Score: unexpected error: %v", err)
	}
	if res.Accuracy > 0.5 {
		t.Errorf("accuracy: want <= 0.5 with three dropped words, got %f", res.Accuracy)
	}
}

func TestScore_RecognizerFailure(t *testing.T) {
	t.Parallel()

	rec := &transcriptionmock.Provider{Err: errors.New("backend down")}
	s := phonetic.New(rec)

	if _, err := s.Score(context.Background(), sineAudio(100, 16000), "hello"); err == nil {
		t.Fatal("Score: want error, got nil")
	}
}

func TestScore_EmptyReference(t *testing.T) {
	t.Parallel()

	rec := &transcriptionmock.Provider{
		Result: &transcription.Result{Text: "", Confidence: 1},
	}
	s := phonetic.New(rec)

	res, err := s.Score(context.Background(), sineAudio(100, 16000), "")
	if err != nil {
		t.Fatalf("Score: unexpected error: %v", err)
	}
	if res.Accuracy != 1 {
		t.Errorf("accuracy for empty reference: want 1, got %f", res.Accuracy)
	}
}
