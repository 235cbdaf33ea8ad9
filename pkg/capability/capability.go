// Package capability defines the vocabulary shared by all analysis and
// synthesis services the tutoring pipeline consumes: the capability kinds, the
// error taxonomy adapters report failures with, and a single-flight handle for
// lazily initialised process-wide adapter singletons.
package capability

import (
	"errors"
	"sort"
	"strings"
)

// Kind identifies one of the external capabilities the pipeline can invoke.
type Kind string

const (
	Transcription        Kind = "transcription"
	GrammarAnalysis      Kind = "grammar-analysis"
	PronunciationScoring Kind = "pronunciation-scoring"
	Translation          Kind = "translation"
)

// IsValid reports whether k is a recognised capability kind.
func (k Kind) IsValid() bool {
	switch k {
	case Transcription, GrammarAnalysis, PronunciationScoring, Translation:
		return true
	}
	return false
}

// String returns the wire representation of the kind.
func (k Kind) String() string { return string(k) }

// ErrUnavailable is returned by an adapter when the underlying service cannot
// be reached or refuses the request. The pipeline treats the capability's
// result as absent; the turn itself continues unless the capability is the
// mandatory grammar analysis.
var ErrUnavailable = errors.New("capability unavailable")

// ErrTimeout is returned by an adapter (or synthesised by the pipeline) when a
// capability call exceeds its per-call deadline. Semantically equivalent to
// ErrUnavailable at the aggregation level.
var ErrTimeout = errors.New("capability timed out")

// Set is an unordered collection of capability kinds. The zero value is an
// empty, ready-to-use set for reads; use Add (or NewSet) before writing.
type Set map[Kind]struct{}

// NewSet returns a Set containing the given kinds.
func NewSet(kinds ...Kind) Set {
	s := make(Set, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

// Add inserts k into the set.
func (s Set) Add(k Kind) { s[k] = struct{}{} }

// Has reports whether k is in the set.
func (s Set) Has(k Kind) bool {
	_, ok := s[k]
	return ok
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// String returns the sorted, comma-separated kinds, for logs and test output.
func (s Set) String() string {
	kinds := make([]string, 0, len(s))
	for k := range s {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return strings.Join(kinds, ",")
}
