// Package scoring ranks candidates for a task by a weighted skill-fit and
// load-factor score and explains each ranking in human-readable form.
//
// The engine is a pure function of its inputs: it holds no state across
// calls, never mutates candidates or tasks, and is safe for concurrent use.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/taskflow/internal/domain/model"
)

// Default scoring configuration constants.
const (
	DefaultSkillWeight = 0.7
	DefaultLoadWeight  = 0.3
	DefaultTopN        = 3
)

// maxUtilization bounds the utilization percent so it fits an int.
const maxUtilization = float64(math.MaxInt64)

// Recommendation is one ranked candidate for a task.
type Recommendation struct {
	Candidate   model.Candidate `json:"candidate"`
	Score       float64         `json:"score"`
	Explanation Explanation     `json:"explanation"`
}

// Engine computes scores, explanations and recommendations.
type Engine struct {
	skillWeight float64
	loadWeight  float64
	topN        int
}

// NewEngine creates an engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		skillWeight: DefaultSkillWeight,
		loadWeight:  DefaultLoadWeight,
		topN:        DefaultTopN,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Score computes the composite score of candidate for task using the default engine.
func Score(candidate *model.Candidate, task *model.Task) (float64, error) {
	return defaultEngine.Score(candidate, task)
}

// Explain builds the rationale for score using the default engine.
func Explain(candidate *model.Candidate, task *model.Task, score float64) (Explanation, error) {
	return defaultEngine.Explain(candidate, task, score)
}

// Recommend ranks roster for task using the default engine.
func Recommend(task *model.Task, roster []model.Candidate) ([]Recommendation, error) {
	return defaultEngine.Recommend(task, roster)
}

// TopN returns the maximum number of recommendations the engine returns.
func (e *Engine) TopN() int { return e.topN }

// Weights returns the skill-fit and load-factor weights.
func (e *Engine) Weights() (skill, load float64) { return e.skillWeight, e.loadWeight }

// breakdown holds the intermediate factors of one score.
type breakdown struct {
	matches    []SkillMatch
	skillFit   float64
	loadFactor  float64
	utilization float64
	score       float64
}

// evaluate validates the inputs and computes every factor of the score.
func (e *Engine) evaluate(candidate *model.Candidate, task *model.Task) (breakdown, error) {
	if candidate == nil {
		return breakdown{}, fmt.Errorf("%w: candidate is nil", ErrInvalidInput)
	}
	if task == nil {
		return breakdown{}, fmt.Errorf("%w: task is nil", ErrInvalidInput)
	}
	if err := task.Validate(); err != nil {
		return breakdown{}, err
	}
	if err := candidate.Validate(); err != nil {
		return breakdown{}, err
	}
	if candidate.Capacity.PointsPerSprint == 0 {
		return breakdown{}, fmt.Errorf("candidate %s: %w", candidate.ID, ErrDivisionByZero)
	}

	var b breakdown
	var sum float64
	for _, req := range task.RequiredSkills {
		level, ok := candidate.SkillLevel(req.Name)
		if !ok {
			continue
		}
		ratio := math.Min(float64(level)/float64(req.MinLevel), 1)
		sum += ratio
		b.matches = append(b.matches, SkillMatch{
			Name:     req.Name,
			Level:    level,
			MinLevel: req.MinLevel,
			Ratio:    ratio,
		})
	}
	// No requirements means nobody fits.
	if n := len(task.RequiredSkills); n > 0 {
		b.skillFit = sum / float64(n)
	}

	ratio := candidate.Capacity.CurrentLoad / candidate.Capacity.PointsPerSprint
	b.loadFactor = 1 - ratio
	b.utilization = math.Round(100 * ratio)
	b.score = round2(e.skillWeight*b.skillFit + e.loadWeight*b.loadFactor)

	// Extreme but finite capacities overflow here.
	if !finite(b.loadFactor) || !finite(b.score) || math.Abs(b.utilization) >= maxUtilization {
		return breakdown{}, fmt.Errorf("%w: candidate %s: capacity %v/%v is out of range",
			ErrInvalidInput, candidate.ID, candidate.Capacity.CurrentLoad, candidate.Capacity.PointsPerSprint)
	}
	return b, nil
}

// Score computes the composite score of candidate for task. The result is a
// ranking key rounded to two decimals; it drops below zero for heavily
// over-allocated candidates.
func (e *Engine) Score(candidate *model.Candidate, task *model.Task) (float64, error) {
	b, err := e.evaluate(candidate, task)
	if err != nil {
		return 0, err
	}
	return b.score, nil
}

// Explain builds the rationale for a candidate's score on task.
func (e *Engine) Explain(candidate *model.Candidate, task *model.Task, score float64) (Explanation, error) {
	if !finite(score) {
		return Explanation{}, fmt.Errorf("%w: score %v is not a finite number", ErrInvalidInput, score)
	}
	b, err := e.evaluate(candidate, task)
	if err != nil {
		return Explanation{}, err
	}
	return newExplanation(candidate.Capacity, b, score), nil
}

// Recommend scores every candidate in roster for task and returns at most
// TopN of them, best first. Equal scores keep their roster order. An empty
// roster yields an empty result. The first invalid candidate aborts the call.
func (e *Engine) Recommend(task *model.Task, roster []model.Candidate) ([]Recommendation, error) {
	recs := make([]Recommendation, 0, len(roster))
	for i := range roster {
		c := &roster[i]
		b, err := e.evaluate(c, task)
		if err != nil {
			return nil, fmt.Errorf("recommend for candidate %q: %w", c.ID, err)
		}
		recs = append(recs, Recommendation{
			Candidate:   c.Clone(),
			Score:       b.score,
			Explanation: newExplanation(c.Capacity, b, b.score),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if len(recs) > e.topN {
		recs = recs[:e.topN]
	}
	return recs, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// round2 rounds v to two decimal places, halves away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
