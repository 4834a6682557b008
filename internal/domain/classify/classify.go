// Package classify maps resolved stroke candidates onto stroke types.
//
// Classification is a policy: Geometry looks at the body shape at the peak
// frame, Velocity at the direction of the motion over the interval. Both are
// pure and interchangeable behind Classifier.
package classify

import (
	"math"

	"github.com/okian/volley/internal/domain/model"
)

// Policy names.
const (
	PolicyGeometry = "geometry"
	PolicyVelocity = "velocity"
	PolicyCascade  = "cascade"
)

// Input is everything a policy may look at for one candidate.
type Input struct {
	Candidate model.CandidateEvent
	Features  model.FeatureVector  // features at the frame nearest the peak
	Samples   []model.MotionSample // the motion signal the candidate indexes into
}

// Result is a policy decision. Confidence is always in [0,1].
type Result struct {
	Type       model.StrokeType
	Confidence float64
	Policy     string
}

// Classifier is a stroke classification policy.
type Classifier interface {
	Name() string
	Classify(in Input) Result
}

// New returns the named policy, defaulting to geometry.
func New(policy string, opts ...Option) Classifier {
	switch policy {
	case PolicyVelocity:
		return NewVelocity(opts...)
	case PolicyCascade:
		return NewCascade(NewGeometry(opts...), NewVelocity(opts...))
	default:
		return NewGeometry(opts...)
	}
}

// Cascade asks the primary policy first and falls back when it cannot decide.
type Cascade struct {
	primary, fallback Classifier
}

// NewCascade creates a two-stage policy.
func NewCascade(primary, fallback Classifier) *Cascade {
	return &Cascade{primary: primary, fallback: fallback}
}

// Name implements Classifier.
func (c *Cascade) Name() string { return PolicyCascade }

// Classify implements Classifier.
func (c *Cascade) Classify(in Input) Result {
	r := c.primary.Classify(in)
	if r.Type != model.Unknown {
		return r
	}
	if fb := c.fallback.Classify(in); fb.Type != model.Unknown {
		return fb
	}
	return r
}

// score accumulates additive confidence up to a ceiling.
type score struct {
	value, ceiling float64
}

func (s *score) add(cond bool, inc float64) {
	if cond {
		s.value += inc
	}
}

func (s *score) result() float64 {
	return clamp01(math.Min(s.value, s.ceiling))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
