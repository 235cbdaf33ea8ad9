// Package rules implements grammar.Provider with a local rule-based analyzer.
//
// The analyzer covers a handful of high-frequency learner error patterns —
// subject–verb agreement with "be", bare verbs after "be", article selection
// before vowels, and common irregular past-tense overgeneralisations. It is
// intentionally narrow: it exists so the pipeline has a working offline
// fallback behind the LLM-backed analyzer, not to rival a full grammar
// checker.
//
// The analyzer is deterministic and stateless; it is safe for concurrent use.
package rules

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/fluentbyte/tutorcore/pkg/provider/grammar"
	"github.com/fluentbyte/tutorcore/pkg/types"
)

// Compile-time assertion that Analyzer satisfies grammar.Provider.
var _ grammar.Provider = (*Analyzer)(nil)

// Analyzer is a rule-based grammar.Provider.
type Analyzer struct{}

// New returns a new rule-based Analyzer.
func New() *Analyzer { return &Analyzer{} }

// beForms maps subject pronouns to their correct present-tense "be" form.
var beForms = map[string]string{
	"i":    "am",
	"he":   "is",
	"she":  "is",
	"it":   "is",
	"we":   "are",
	"you":  "are",
	"they": "are",
}

// bareVerbs is the set of common base-form verbs checked for the
// be + bare-verb pattern ("I am go"). Gerunds and participles are excluded
// by construction.
var bareVerbs = map[string]struct{}{
	"go": {}, "come": {}, "eat": {}, "drink": {}, "walk": {}, "run": {},
	"read": {}, "write": {}, "speak": {}, "talk": {}, "work": {}, "play": {},
	"cook": {}, "study": {}, "learn": {}, "make": {}, "take": {}, "buy": {},
	"sleep": {}, "watch": {}, "listen": {}, "travel": {}, "visit": {},
}

// irregularPast maps overgeneralised past forms to the correct irregular past.
var irregularPast = map[string]string{
	"goed":    "went",
	"comed":   "came",
	"eated":   "ate",
	"drinked": "drank",
	"runned":  "ran",
	"writed":  "wrote",
	"speaked": "spoke",
	"maked":   "made",
	"taked":   "took",
	"buyed":   "bought",
	"sleeped": "slept",
}

// Analyze applies the rule set to text. contextSummary is unused by the local
// analyzer; proficiency only tunes explanation verbosity.
func (a *Analyzer) Analyze(ctx context.Context, text, contextSummary string, proficiency types.ProficiencyLevel) (*grammar.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}

	tokens := tokenize(text)
	var errs []grammar.Error

	for i, tok := range tokens {
		if e := checkBeAgreement(text, tokens, i); e != nil {
			errs = append(errs, *e)
			continue
		}
		if e := checkBareVerbAfterBe(text, tokens, i); e != nil {
			errs = append(errs, *e)
			continue
		}
		if e := checkArticle(text, tokens, i); e != nil {
			errs = append(errs, *e)
			continue
		}
		if correct, ok := irregularPast[tok.lower]; ok {
			errs = append(errs, locate(text, grammar.Error{
				Kind:        "past-tense",
				Original:    tok.text,
				Correction:  correct,
				Explanation: fmt.Sprintf("%q is an irregular verb; its past form is %q.", strings.TrimSuffix(tok.lower, "ed"), correct),
			}, tok.offset))
		}
	}

	fluency := fluencyFor(len(tokens), len(errs))
	return &grammar.Analysis{
		FluencyScore:    &fluency,
		VocabularyLevel: vocabularyFor(tokens),
		Errors:          errs,
	}, nil
}

// token is one whitespace-delimited word with punctuation stripped.
type token struct {
	text   string // as written, punctuation stripped
	lower  string
	offset int // byte offset of text within the source
}

func tokenize(s string) []token {
	var out []token
	i := 0
	for i < len(s) {
		// Skip separators.
		for i < len(s) && !isWordByte(s[i]) {
			i++
		}
		start := i
		for i < len(s) && isWordByte(s[i]) {
			i++
		}
		if i > start {
			w := s[start:i]
			out = append(out, token{text: w, lower: strings.ToLower(w), offset: start})
		}
	}
	return out
}

func isWordByte(b byte) bool {
	return b == '\'' || unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b))
}

// checkBeAgreement flags pronoun + wrong "be" form ("he are", "they is").
func checkBeAgreement(src string, tokens []token, i int) *grammar.Error {
	if i+1 >= len(tokens) {
		return nil
	}
	want, ok := beForms[tokens[i].lower]
	if !ok {
		return nil
	}
	next := tokens[i+1].lower
	if next != "am" && next != "is" && next != "are" {
		return nil
	}
	if next == want {
		return nil
	}
	e := locate(src, grammar.Error{
		Kind:        "verb-agreement",
		Original:    tokens[i].text + " " + tokens[i+1].text,
		Correction:  tokens[i].text + " " + want,
		Explanation: fmt.Sprintf("The subject %q takes %q, not %q.", tokens[i].text, want, tokens[i+1].text),
	}, tokens[i].offset)
	return &e
}

// checkBareVerbAfterBe flags be + base verb ("I am go to the kitchen"),
// suggesting the progressive form.
func checkBareVerbAfterBe(src string, tokens []token, i int) *grammar.Error {
	if i+1 >= len(tokens) {
		return nil
	}
	be := tokens[i].lower
	if be != "am" && be != "is" && be != "are" {
		return nil
	}
	verb := tokens[i+1].lower
	if _, ok := bareVerbs[verb]; !ok {
		return nil
	}
	gerund := gerundOf(verb)
	e := locate(src, grammar.Error{
		Kind:        "verb-form",
		Original:    tokens[i].text + " " + tokens[i+1].text,
		Correction:  tokens[i].text + " " + gerund,
		Explanation: fmt.Sprintf("After %q the verb needs the -ing form: %q, not %q.", be, gerund, verb),
	}, tokens[i].offset)
	return &e
}

// checkArticle flags "a" before a vowel sound ("a apple").
func checkArticle(src string, tokens []token, i int) *grammar.Error {
	if i+1 >= len(tokens) || tokens[i].lower != "a" {
		return nil
	}
	next := tokens[i+1].lower
	if next == "" || !strings.ContainsRune("aeiou", rune(next[0])) {
		return nil
	}
	// "a university", "a one-off": orthographic vowels with consonant sounds.
	if strings.HasPrefix(next, "uni") || strings.HasPrefix(next, "one") || strings.HasPrefix(next, "eu") {
		return nil
	}
	e := locate(src, grammar.Error{
		Kind:        "article",
		Original:    tokens[i].text + " " + tokens[i+1].text,
		Correction:  "an " + tokens[i+1].text,
		Explanation: fmt.Sprintf("Use \"an\" before a vowel sound: \"an %s\".", tokens[i+1].text),
	}, tokens[i].offset)
	return &e
}

// gerundOf derives the -ing form with the usual spelling adjustments.
func gerundOf(verb string) string {
	switch {
	case strings.HasSuffix(verb, "ie"):
		return verb[:len(verb)-2] + "ying"
	case strings.HasSuffix(verb, "e") && verb != "be" && !strings.HasSuffix(verb, "ee"):
		return verb[:len(verb)-1] + "ing"
	case verb == "run":
		return "running"
	default:
		return verb + "ing"
	}
}

// locate fills in the error's span from its offset within src.
func locate(src string, e grammar.Error, offset int) grammar.Error {
	end := offset + len(e.Original)
	if offset >= 0 && end <= len(src) {
		e.Span = &grammar.Span{Start: offset, End: end}
	}
	return e
}

// fluencyFor derives a coarse fluency estimate from utterance length and
// defect density.
func fluencyFor(tokenCount, errorCount int) float64 {
	if tokenCount == 0 {
		return 0
	}
	f := 1.0 - 0.15*float64(errorCount)
	if tokenCount < 4 {
		f -= 0.1
	}
	if f < 0.2 {
		f = 0.2
	}
	return f
}

// vocabularyFor maps mean word length onto a coarse CEFR-style label.
func vocabularyFor(tokens []token) string {
	if len(tokens) == 0 {
		return ""
	}
	total := 0
	for _, t := range tokens {
		total += len(t.lower)
	}
	switch mean := float64(total) / float64(len(tokens)); {
	case mean >= 6:
		return "B2"
	case mean >= 4.5:
		return "B1"
	default:
		return "A2"
	}
}
