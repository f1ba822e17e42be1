// Package scoring turns a free-text employee response into structured
// feedback using keyword and length heuristics.
//
// Scoring is a pure function of the response text: the same text always
// yields the same sub-scores, overall score, strengths, improvements and
// suggestions. Only the feedback id differs between calls.
package scoring

import (
	"strings"

	"github.com/google/uuid"

	"github.com/okian/shopfloor/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultFloor   = 10
	defaultCeiling = 95
	maxScoreValue  = 100

	strengthThreshold   = 70
	suggestionThreshold = 60

	shortWordLimit   = 15
	mediumWordLimit  = 30
	longWordLimit    = 50
	briefWordLimit   = 25
	verboseWordLimit = 100
)

// Dimension identifies one of the three scored qualities of a response.
type Dimension int

// Scored dimensions.
const (
	Empathy Dimension = iota
	Clarity
	Responsiveness
)

func (d Dimension) String() string {
	switch d {
	case Empathy:
		return "empathy"
	case Clarity:
		return "clarity"
	case Responsiveness:
		return "responsiveness"
	}
	return "unknown"
}

// Scores holds the three sub-scores of a response.
type Scores struct {
	Empathy        int
	Clarity        int
	Responsiveness int
}

func (s *Scores) add(d Dimension, delta int) {
	switch d {
	case Empathy:
		s.Empathy += delta
	case Clarity:
		s.Clarity += delta
	case Responsiveness:
		s.Responsiveness += delta
	}
}

// Overall returns the weighted score 0.4*empathy + 0.3*clarity +
// 0.3*responsiveness rounded half up. Integer arithmetic keeps it exact.
func (s Scores) Overall() int {
	return (4*s.Empathy + 3*s.Clarity + 3*s.Responsiveness + 5) / 10
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithBounds sets the clamp range applied to each sub-score. Ranges outside
// 0-100 or with floor >= ceiling are ignored.
func WithBounds(floor, ceiling int) Option {
	return func(e *Engine) {
		if floor >= 0 && ceiling <= maxScoreValue && floor < ceiling {
			e.floor = floor
			e.ceiling = ceiling
		}
	}
}

// WithIDGenerator overrides how feedback ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// Engine scores responses. It is safe for concurrent use.
type Engine struct {
	floor   int
	ceiling int
	newID   func() string
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		floor:   defaultFloor,
		ceiling: defaultCeiling,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bounds returns the clamp range in effect.
func (e *Engine) Bounds() (floor, ceiling int) {
	return e.floor, e.ceiling
}

// Evaluate scores text and returns the full feedback record. The step is the
// context the response was given in; the heuristics only look at the text.
func (e *Engine) Evaluate(_ model.ScenarioStep, text string) model.Feedback {
	sig := analyze(text)
	scores := e.score(sig)

	return model.Feedback{
		ID:                  e.newID(),
		EmpathyScore:        scores.Empathy,
		ClarityScore:        scores.Clarity,
		ResponsivenessScore: scores.Responsiveness,
		OverallScore:        scores.Overall(),
		Strengths:           strengths(sig, scores),
		Improvements:        improvements(sig, scores),
		Suggestions:         suggestions(scores),
	}
}

// Score returns only the clamped sub-scores for text.
func (e *Engine) Score(text string) Scores {
	return e.score(analyze(text))
}

func (e *Engine) score(sig signals) Scores {
	s := baseScores(sig.words)
	for _, adj := range adjustments {
		if adj.when(sig) {
			s.add(adj.dim, adj.delta)
		}
	}
	s.Empathy = e.clamp(s.Empathy)
	s.Clarity = e.clamp(s.Clarity)
	s.Responsiveness = e.clamp(s.Responsiveness)
	return s
}

func (e *Engine) clamp(v int) int {
	return min(e.ceiling, max(e.floor, v))
}

// signals are the features of a response the rules look at.
type signals struct {
	lower string
	words int
}

func analyze(text string) signals {
	return signals{
		lower: strings.ToLower(text),
		words: WordCount(text),
	}
}

// has reports whether the response mentions any of the given fragments.
func (s signals) has(fragments ...string) bool {
	for _, f := range fragments {
		if strings.Contains(s.lower, f) {
			return true
		}
	}
	return false
}

// WordCount counts whitespace separated words. It never returns less than
// one so that empty input lands in the shortest bucket.
func WordCount(text string) int {
	return max(1, len(strings.Fields(text)))
}

// baseScores seeds the sub-scores from the word count bucket.
func baseScores(words int) Scores {
	switch {
	case words < shortWordLimit:
		return Scores{Empathy: 40, Clarity: 45, Responsiveness: 50}
	case words < mediumWordLimit:
		return Scores{Empathy: 60, Clarity: 65, Responsiveness: 65}
	default:
		return Scores{Empathy: 70, Clarity: 75, Responsiveness: 75}
	}
}

func (s signals) apologizes() bool { return s.has("sorry", "apologize") }
