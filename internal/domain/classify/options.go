package classify

import "github.com/okian/volley/internal/domain/features"

// Option configures the classification policies. Options a policy does not
// use are ignored by it.
type Option func(*settings)

type settings struct {
	side           features.Side
	floor          float64
	missingPenalty float64

	// geometry
	wideSeparation  float64
	volleyExtension float64
	overheadOffDrop float64

	// velocity, normalized units per second
	verticalSpeed float64
	groundSpeed   float64
	directionEps  float64
}

func defaults() settings {
	return settings{
		side:            features.Right,
		floor:           0.3,
		missingPenalty:  0.05,
		wideSeparation:  1.0,
		volleyExtension: 0.7,
		overheadOffDrop: 0.1,
		verticalSpeed:   1.2,
		groundSpeed:     0.6,
		directionEps:    0.1,
	}
}

func apply(opts []Option) settings {
	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithDominantSide sets the player's dominant side.
func WithDominantSide(side features.Side) Option {
	return func(s *settings) {
		if side == features.Left || side == features.Right {
			s.side = side
		}
	}
}

// WithConfidenceFloor sets the confidence under which a label becomes unknown.
func WithConfidenceFloor(f float64) Option {
	return func(s *settings) {
		if f >= 0 && f <= 1 {
			s.floor = f
		}
	}
}

// WithMissingLandmarkPenalty sets the confidence fraction lost per missing
// required landmark.
func WithMissingLandmarkPenalty(p float64) Option {
	return func(s *settings) {
		if p >= 0 && p <= 1 {
			s.missingPenalty = p
		}
	}
}

// WithWideSeparation sets the normalized wrist separation that marks a
// groundstroke.
func WithWideSeparation(v float64) Option {
	return func(s *settings) {
		if v > 0 {
			s.wideSeparation = v
		}
	}
}

// WithVerticalSpeed sets the peak speed above which vertical motion is a
// serve or overhead.
func WithVerticalSpeed(v float64) Option {
	return func(s *settings) {
		if v > 0 {
			s.verticalSpeed = v
		}
	}
}

// WithGroundSpeed sets the peak speed separating groundstrokes from volleys.
func WithGroundSpeed(v float64) Option {
	return func(s *settings) {
		if v > 0 {
			s.groundSpeed = v
		}
	}
}
