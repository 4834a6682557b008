// Package analytics runs the read-only consumers of a finished stroke
// timeline concurrently and merges their results into a session summary.
package analytics

import (
	"context"
	"time"

	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/rally"
	"github.com/okian/volley/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	defaultGridSize          = 20
	defaultSecondServeWindow = 3.0
	defaultPlacementWindow   = 1.0 // seconds after a serve's peak
	defaultTossWindow        = 1.5 // seconds before a serve's contact
)

// Input is what the consumers read. Frames are ordered with resolved
// timestamps; Ball is ordered by time.
type Input struct {
	Timeline []model.StrokeEvent
	Frames   []model.PoseFrame
	Ball     []model.BallSample
	View     model.CameraView
}

// Report holds every consumer result plus the merged summary.
type Report struct {
	Rally     rally.Analysis
	Heatmap   Heatmap
	Shots     ShotAnalysis
	Serves    ServeStats
	Technique TechniqueReport
	Summary   Summary
	IQ        TennisIQ
}

// Engine fans a timeline out to the analytics consumers.
type Engine struct {
	aggregator        *rally.Aggregator
	gridSize          int
	secondServeWindow float64
	placementWindow   float64
	tossWindow        float64
	tossWrist         int
	logger            logger.Logger
}

// NewEngine creates an analytics engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		aggregator:        rally.NewAggregator(),
		gridSize:          defaultGridSize,
		secondServeWindow: defaultSecondServeWindow,
		placementWindow:   defaultPlacementWindow,
		tossWindow:        defaultTossWindow,
		tossWrist:         model.LeftWrist,
		logger:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run analyzes a timeline without pose frames or ball data.
func (e *Engine) Run(ctx context.Context, timeline []model.StrokeEvent) (*Report, error) {
	return e.Analyze(ctx, Input{Timeline: timeline})
}

// Analyze executes the consumers concurrently. The input must not be
// modified while Analyze is in progress; every consumer only reads it and
// writes its own result.
func (e *Engine) Analyze(ctx context.Context, in Input) (*Report, error) {
	start := time.Now()
	timeline := in.Timeline
	var (
		rallies   rally.Analysis
		heat      Heatmap
		shots     ShotAnalysis
		serves    ServeStats
		placement Placement
		toss      TossAnalysis
		technique TechniqueReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		rallies = e.aggregator.Aggregate(timeline)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		heat = BuildHeatmap(timeline, e.gridSize)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		shots = AnalyzeShots(timeline)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		serves = AnalyzeServes(timeline, e.secondServeWindow)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		placement = AnalyzePlacement(timeline, in.Ball, e.placementWindow)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		toss = AnalyzeToss(timeline, in.Frames, e.tossWrist, e.tossWindow)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		technique = AnalyzeTechnique(timeline, in.Frames, in.View)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	serves.Placement = placement
	serves.Toss = toss
	serves.Insights = serveInsights(timeline, serves)
	r := &Report{
		Rally:     rallies,
		Heatmap:   heat,
		Shots:     shots,
		Serves:    serves,
		Technique: technique,
	}
	r.Summary = Summarize(timeline, r, e.aggregator.HighPressure())
	r.IQ = ScoreIQ(timeline, r)

	e.logger.Debug(ctx, "analytics complete",
		logger.Int("strokes", len(timeline)),
		logger.Int("rallies", rallies.Stats.Total),
		logger.Float64("tennis_iq", r.IQ.Total),
		logger.Duration("elapsed", time.Since(start)),
	)
	return r, nil
}
