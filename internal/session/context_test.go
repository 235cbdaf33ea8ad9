package session_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fluentbyte/tutorcore/internal/session"
	"github.com/fluentbyte/tutorcore/pkg/types"
)

func profile(level types.ProficiencyLevel) *types.LearnerProfile {
	return &types.LearnerProfile{UserID: "u1", Proficiency: level}
}

func TestAddTurn_FIFOEviction(t *testing.T) {
	t.Parallel()

	c := session.NewContext(profile(types.Intermediate), session.WithCapacity(3))
	for i := 1; i <= 5; i++ {
		c.AddTurn(session.Turn{UserMessage: fmt.Sprintf("turn %d", i), Confidence: 0.9})
	}

	if c.Len() != 3 {
		t.Fatalf("len: want 3, got %d", c.Len())
	}
	h := c.History()
	want := []string{"turn 3", "turn 4", "turn 5"}
	for i, w := range want {
		if h[i].UserMessage != w {
			t.Errorf("history[%d]: want %q, got %q", i, w, h[i].UserMessage)
		}
	}
}

func TestAddTurn_DefaultCapacity(t *testing.T) {
	t.Parallel()

	c := session.NewContext(profile(types.Intermediate))
	for i := range 20 {
		c.AddTurn(session.Turn{UserMessage: fmt.Sprintf("turn %d", i)})
	}
	if c.Len() != session.DefaultCapacity {
		t.Errorf("len: want %d, got %d", session.DefaultCapacity, c.Len())
	}
}

func TestSummary_OrderPreserving(t *testing.T) {
	t.Parallel()

	c := session.NewContext(profile(types.Intermediate))
	c.AddTurn(session.Turn{UserMessage: "hello there", TutorReply: "Hello! How are you?"})
	c.AddTurn(session.Turn{UserMessage: "I am fine", TutorReply: "Glad to hear it."})

	s := c.Summary()
	first := strings.Index(s, "hello there")
	second := strings.Index(s, "I am fine")
	if first < 0 || second < 0 {
		t.Fatalf("summary missing turns: %q", s)
	}
	if first > second {
		t.Errorf("summary order: first turn must precede second: %q", s)
	}
	if !strings.Contains(s, "Glad to hear it.") {
		t.Errorf("summary missing tutor reply: %q", s)
	}

	if got := c.Summary(); got != s {
		t.Error("Summary must be deterministic")
	}
}

func TestSummary_Empty(t *testing.T) {
	t.Parallel()

	c := session.NewContext(profile(types.Elementary))
	if got := c.Summary(); got != "" {
		t.Errorf("empty summary: want \"\", got %q", got)
	}
}

func TestNeedsNativeExplanation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		level      types.ProficiencyLevel
		confidence *float64
		want       bool
	}{
		{"elementary always", types.Elementary, ptr(0.95), true},
		{"elementary no history", types.Elementary, nil, true},
		{"intermediate high confidence", types.Intermediate, ptr(0.9), false},
		{"intermediate low confidence", types.Intermediate, ptr(0.5), true},
		{"intermediate at threshold", types.Intermediate, ptr(0.6), false},
		{"upper no history", types.UpperIntermediate, nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := session.NewContext(profile(tc.level))
			if tc.confidence != nil {
				c.AddTurn(session.Turn{UserMessage: "x", Confidence: *tc.confidence})
			}
			if got := c.NeedsNativeExplanation(); got != tc.want {
				t.Errorf("NeedsNativeExplanation: want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestNeedsNativeExplanation_CustomThreshold(t *testing.T) {
	t.Parallel()

	c := session.NewContext(profile(types.Intermediate), session.WithExplainThreshold(0.8))
	c.AddTurn(session.Turn{UserMessage: "x", Confidence: 0.7})
	if !c.NeedsNativeExplanation() {
		t.Error("confidence 0.7 below threshold 0.8 must need an explanation")
	}
}

func ptr(f float64) *float64 { return &f }
