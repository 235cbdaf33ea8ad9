// Package session holds the per-session conversation state: a bounded FIFO
// history of turns plus a reference to the learner's profile.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/fluentbyte/tutorcore/pkg/types"
)

// DefaultCapacity is the number of turns retained when no explicit capacity
// is configured.
const DefaultCapacity = 5

// DefaultExplainThreshold is the turn confidence below which the next reply
// carries a native-language explanation regardless of proficiency.
const DefaultExplainThreshold = 0.6

// Turn is one learner utterance plus the tutor's reply. Immutable once
// created.
type Turn struct {
	// UserMessage is the learner's utterance (transcribed, for audio turns).
	UserMessage string

	// TutorReply is the composed target-language reply. Native-language
	// explanations are never stored.
	TutorReply string

	// Confidence is the analysis confidence the pipeline computed for this
	// turn.
	Confidence float64

	// Timestamp is when the turn completed.
	Timestamp time.Time
}

// Context is the conversation state for one tutoring session.
//
// A session processes one turn at a time, so Context performs no locking:
// the planner reads it before the parallel phase starts and the orchestrator
// writes it once after the phase has fully joined. It must not be shared
// across sessions.
type Context struct {
	profile          *types.LearnerProfile
	capacity         int
	explainThreshold float64

	history []Turn
}

// Option is a functional option for configuring a Context.
type Option func(*Context)

// WithCapacity sets the maximum number of retained turns. Default is 5.
func WithCapacity(n int) Option {
	return func(c *Context) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithExplainThreshold sets the confidence threshold below which
// NeedsNativeExplanation reports true. Default is 0.6.
func WithExplainThreshold(t float64) Option {
	return func(c *Context) {
		if t > 0 {
			c.explainThreshold = t
		}
	}
}

// NewContext creates a Context for the given learner profile. The profile is
// shared with the application layer, not owned; the core only reads it.
func NewContext(profile *types.LearnerProfile, opts ...Option) *Context {
	c := &Context{
		profile:          profile,
		capacity:         DefaultCapacity,
		explainThreshold: DefaultExplainThreshold,
	}
	for _, o := range opts {
		o(c)
	}
	c.history = make([]Turn, 0, c.capacity)
	return c
}

// Profile returns the learner profile this session belongs to.
func (c *Context) Profile() *types.LearnerProfile { return c.profile }

// Len returns the number of retained turns.
func (c *Context) Len() int { return len(c.history) }

// History returns a copy of the retained turns, oldest first.
func (c *Context) History() []Turn {
	out := make([]Turn, len(c.history))
	copy(out, c.history)
	return out
}

// AddTurn appends a completed turn, evicting the oldest when the history is
// full. Amortised O(1).
func (c *Context) AddTurn(t Turn) {
	if len(c.history) >= c.capacity {
		// FIFO eviction: shift left, reusing the backing array.
		copy(c.history, c.history[1:])
		c.history = c.history[:len(c.history)-1]
	}
	c.history = append(c.history, t)
}

// Summary returns a deterministic, order-preserving rendering of the
// retained turns for use as conditioning context in capability calls. The
// output size is bounded by the history capacity.
func (c *Context) Summary() string {
	if len(c.history) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, t := range c.history {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "Learner: %s", t.UserMessage)
		if t.TutorReply != "" {
			fmt.Fprintf(&sb, "\nTutor: %s", t.TutorReply)
		}
	}
	return sb.String()
}

// NeedsNativeExplanation reports whether the next reply should carry a
// native-language explanation: true for elementary learners, and for anyone
// whose most recent turn scored below the confidence threshold.
//
// This is the single authoritative decision point for bilingual assistance.
func (c *Context) NeedsNativeExplanation() bool {
	if c.profile != nil && c.profile.Proficiency == types.Elementary {
		return true
	}
	if n := len(c.history); n > 0 {
		return c.history[n-1].Confidence < c.explainThreshold
	}
	return false
}
