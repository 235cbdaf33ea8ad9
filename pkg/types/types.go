// Package types holds learner-facing data types shared between the tutoring
// core and the capability provider packages.
package types

// ProficiencyLevel is the learner's assessed language level. It influences
// which feedback strategy the planner selects and whether native-language
// explanations accompany corrections.
type ProficiencyLevel string

const (
	Elementary        ProficiencyLevel = "elementary"
	Intermediate      ProficiencyLevel = "intermediate"
	UpperIntermediate ProficiencyLevel = "upper-intermediate"
)

// IsValid reports whether l is a recognised proficiency level.
func (l ProficiencyLevel) IsValid() bool {
	switch l {
	case Elementary, Intermediate, UpperIntermediate:
		return true
	}
	return false
}

// String returns the wire representation of the level.
func (l ProficiencyLevel) String() string { return string(l) }

// LearnerProfile describes the learner a tutoring session belongs to.
//
// The tutoring core treats the profile as read-only: it is created and
// mutated by the surrounding application layer and shared with the session's
// ConversationContext by reference.
type LearnerProfile struct {
	// UserID uniquely identifies the learner.
	UserID string

	// Proficiency is the learner's current assessed level.
	Proficiency ProficiencyLevel

	// RecurringErrorTags records the grammar error kinds observed in past
	// sessions, one entry per occurrence. A kind appearing two or more times
	// marks a systematic weakness rather than a one-off slip, which switches
	// the feedback strategy from Correct to Drill.
	RecurringErrorTags []string

	// SessionCount is the number of tutoring sessions completed so far.
	SessionCount int
}

// ErrorTagCount returns how many times kind occurs in RecurringErrorTags.
func (p *LearnerProfile) ErrorTagCount(kind string) int {
	n := 0
	for _, t := range p.RecurringErrorTags {
		if t == kind {
			n++
		}
	}
	return n
}
