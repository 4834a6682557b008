package service

import (
	"github.com/okian/volley/internal/config"
	"github.com/okian/volley/internal/domain/analytics"
	"github.com/okian/volley/internal/domain/classify"
	"github.com/okian/volley/internal/domain/features"
	"github.com/okian/volley/internal/domain/motion"
	"github.com/okian/volley/internal/domain/pipeline"
	"github.com/okian/volley/internal/domain/rally"
	"github.com/okian/volley/internal/domain/scoring"
	"github.com/okian/volley/internal/domain/segment"
	"github.com/okian/volley/internal/domain/timeline"
	"github.com/okian/volley/pkg/logger"
)

// NewAnalyzer builds the analysis pipeline from engine configuration.
func NewAnalyzer(e config.Engine, log logger.Logger) *pipeline.Analyzer {
	side := features.ParseSide(e.DominantSide)

	scorer := scoring.NewPressureScorer(scoring.WithWeights(scoring.Weights{
		Length:     e.PressureLengthWeight,
		ErrorRate:  e.PressureErrorWeight,
		Difficulty: e.PressureDifficultyWeight,
	}))
	aggregator := rally.NewAggregator(
		rally.WithGapThreshold(e.RallyGapSec),
		rally.WithScorer(scorer),
		rally.WithHighPressure(e.HighPressure),
		rally.WithLogger(log.Named("rally")),
	)

	return pipeline.New(
		pipeline.WithExtractor(features.NewExtractor(
			features.WithMinVisibility(e.MinVisibility),
			features.WithMinLandmarks(e.MinLandmarks),
			features.WithDominantSide(side),
		)),
		pipeline.WithMotionBuilder(motion.NewBuilder(
			motion.WithPoint(motion.Point(e.MotionPoint)),
			motion.WithSmoothingWindow(e.SmoothingWindow),
			motion.WithMinVisibility(e.MinVisibility),
			motion.WithLeftDominant(side == features.Left),
		)),
		pipeline.WithSegmenter(segment.New(
			segment.WithMinPeakSpeed(e.MinPeakSpeed),
			segment.WithBoundaryRatio(e.BoundaryRatio),
		)),
		pipeline.WithClassifier(classify.New(e.ClassifierPolicy,
			classify.WithDominantSide(side),
			classify.WithConfidenceFloor(e.ConfidenceFloor),
		)),
		pipeline.WithAssembler(timeline.NewAssembler(
			timeline.WithMinDuration(e.MinEventDuration),
			timeline.WithMaxDuration(e.MaxEventDuration),
		)),
		pipeline.WithAnalytics(analytics.NewEngine(
			analytics.WithAggregator(aggregator),
			analytics.WithGridSize(e.HeatmapSize),
			analytics.WithLeftDominant(side == features.Left),
			analytics.WithLogger(log.Named("analytics")),
		)),
		pipeline.WithLogger(log.Named("pipeline")),
	)
}
