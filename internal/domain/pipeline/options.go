package pipeline

import (
	"github.com/okian/volley/internal/domain/analytics"
	"github.com/okian/volley/internal/domain/classify"
	"github.com/okian/volley/internal/domain/features"
	"github.com/okian/volley/internal/domain/motion"
	"github.com/okian/volley/internal/domain/segment"
	"github.com/okian/volley/internal/domain/timeline"
	"github.com/okian/volley/pkg/logger"
)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithExtractor sets the feature extractor.
func WithExtractor(e *features.Extractor) Option {
	return func(a *Analyzer) {
		if e != nil {
			a.extractor = e
		}
	}
}

// WithMotionBuilder sets the motion signal builder.
func WithMotionBuilder(b *motion.Builder) Option {
	return func(a *Analyzer) {
		if b != nil {
			a.builder = b
		}
	}
}

// WithSegmenter sets the event segmenter.
func WithSegmenter(s *segment.Segmenter) Option {
	return func(a *Analyzer) {
		if s != nil {
			a.segmenter = s
		}
	}
}

// WithClassifier sets the classification policy.
func WithClassifier(c classify.Classifier) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.classifier = c
		}
	}
}

// WithRefiner sets the context refiner.
func WithRefiner(r *classify.Refiner) Option {
	return func(a *Analyzer) {
		if r != nil {
			a.refiner = r
		}
	}
}

// WithAssembler sets the timeline assembler.
func WithAssembler(t *timeline.Assembler) Option {
	return func(a *Analyzer) {
		if t != nil {
			a.assembler = t
		}
	}
}

// WithAnalytics sets the analytics engine.
func WithAnalytics(e *analytics.Engine) Option {
	return func(a *Analyzer) {
		if e != nil {
			a.engine = e
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}
