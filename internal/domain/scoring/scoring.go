// Package scoring rates how much pressure a rally put on the player.
package scoring

import (
	"math"

	"github.com/okian/volley/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// Default pressure configuration constants.
const (
	defaultLengthWeight     = 0.3
	defaultErrorWeight      = 0.4
	defaultDifficultyWeight = 0.3
	defaultLengthNorm       = 10  // strokes for a full length factor
	defaultDifficultyScale  = 1.0 // peak speed std dev for a full difficulty factor
)

// Weights blends the three pressure factors.
type Weights struct {
	Length     float64
	ErrorRate  float64
	Difficulty float64
}

// Option applies a configuration option to the PressureScorer.
type Option func(*PressureScorer)

// WithWeights sets the factor weights. Negative weights are ignored.
func WithWeights(w Weights) Option {
	return func(s *PressureScorer) {
		if w.Length >= 0 && w.ErrorRate >= 0 && w.Difficulty >= 0 {
			s.weights = w
		}
	}
}

// WithLengthNorm sets the rally length that saturates the length factor.
func WithLengthNorm(n int) Option {
	return func(s *PressureScorer) {
		if n > 0 {
			s.lengthNorm = n
		}
	}
}

// WithDifficultyScale sets the swing speed spread that saturates the
// difficulty factor.
func WithDifficultyScale(v float64) Option {
	return func(s *PressureScorer) {
		if v > 0 {
			s.difficultyScale = v
		}
	}
}

// Result is a pressure score with the factors it was built from.
type Result struct {
	Pressure   float64 // [0,1]
	Length     float64
	ErrorRate  float64
	Difficulty float64
}

// Scorer rates a rally's strokes.
type Scorer interface {
	Score(events []model.StrokeEvent) Result
}

// PressureScorer implements Scorer as a clamped weighted sum.
type PressureScorer struct {
	weights         Weights
	lengthNorm      int
	difficultyScale float64
}

// NewPressureScorer creates a scorer with configuration options.
func NewPressureScorer(opts ...Option) *PressureScorer {
	s := &PressureScorer{
		weights: Weights{
			Length:     defaultLengthWeight,
			ErrorRate:  defaultErrorWeight,
			Difficulty: defaultDifficultyWeight,
		},
		lengthNorm:      defaultLengthNorm,
		difficultyScale: defaultDifficultyScale,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the pressure of a rally. An empty rally scores 0.
func (s *PressureScorer) Score(events []model.StrokeEvent) Result {
	n := len(events)
	if n == 0 {
		return Result{}
	}

	errorsCount := 0
	speeds := make([]float64, n)
	for i, e := range events {
		if e.Outcome == model.OutcomeError {
			errorsCount++
		}
		speeds[i] = e.PeakSpeed
	}

	r := Result{
		Length:    math.Min(1, float64(n)/float64(s.lengthNorm)),
		ErrorRate: float64(errorsCount) / float64(n),
	}
	if n > 1 {
		r.Difficulty = math.Min(1, stat.PopStdDev(speeds, nil)/s.difficultyScale)
	}
	r.Pressure = clamp01(s.weights.Length*r.Length + s.weights.ErrorRate*r.ErrorRate + s.weights.Difficulty*r.Difficulty)
	return r
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
