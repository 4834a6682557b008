package rally

import (
	"github.com/okian/volley/internal/domain/scoring"
	"github.com/okian/volley/pkg/logger"
)

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithGapThreshold sets the idle time in seconds that closes a rally.
func WithGapThreshold(sec float64) Option {
	return func(a *Aggregator) {
		if sec > 0 {
			a.gap = sec
		}
	}
}

// WithScorer replaces the pressure scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(a *Aggregator) {
		if s != nil {
			a.scorer = s
		}
	}
}

// WithMomentumStep sets the momentum swing per unit of pressure.
func WithMomentumStep(step float64) Option {
	return func(a *Aggregator) {
		if step > 0 {
			a.momentumStep = step
		}
	}
}

// WithHighPressure sets the pressure above which a rally counts as high pressure.
func WithHighPressure(threshold float64) Option {
	return func(a *Aggregator) {
		if threshold >= 0 && threshold <= 1 {
			a.highPressure = threshold
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}
