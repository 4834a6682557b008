package analytics

import (
	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/rally"
	"github.com/okian/volley/pkg/logger"
)

// Option configures an Engine.
type Option func(*Engine)

// WithAggregator sets the rally aggregator used by the rally consumer.
func WithAggregator(a *rally.Aggregator) Option {
	return func(e *Engine) {
		if a != nil {
			e.aggregator = a
		}
	}
}

// WithGridSize sets the heatmap resolution per axis.
func WithGridSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.gridSize = n
		}
	}
}

// WithSecondServeWindow sets how soon after a serve another serve counts as
// a second serve.
func WithSecondServeWindow(sec float64) Option {
	return func(e *Engine) {
		if sec > 0 {
			e.secondServeWindow = sec
		}
	}
}

// WithPlacementWindow sets how long after a serve the ball track is read
// for its landing zone.
func WithPlacementWindow(sec float64) Option {
	return func(e *Engine) {
		if sec > 0 {
			e.placementWindow = sec
		}
	}
}

// WithTossWindow sets how far before contact the tossing hand is followed.
func WithTossWindow(sec float64) Option {
	return func(e *Engine) {
		if sec > 0 {
			e.tossWindow = sec
		}
	}
}

// WithLeftDominant follows the right wrist as the tossing hand.
func WithLeftDominant(left bool) Option {
	return func(e *Engine) {
		e.tossWrist = model.LeftWrist
		if left {
			e.tossWrist = model.RightWrist
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
