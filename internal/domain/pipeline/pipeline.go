// Package pipeline runs one session through feature extraction, motion,
// segmentation, overlap resolution, classification and timeline assembly,
// then hands the timeline to the analytics consumers.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/volley/internal/domain/analytics"
	"github.com/okian/volley/internal/domain/classify"
	"github.com/okian/volley/internal/domain/dedupe"
	"github.com/okian/volley/internal/domain/features"
	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/motion"
	"github.com/okian/volley/internal/domain/segment"
	"github.com/okian/volley/internal/domain/timeline"
	"github.com/okian/volley/pkg/logger"
)

// Result is the outcome of one session analysis.
type Result struct {
	SessionID    string
	FPS          float64
	FramesTotal  int
	FramesUsable int // frames whose features could be extracted
	Samples      int
	Candidates   int // candidates left after overlap resolution
	Timeline     []model.StrokeEvent
	Analytics    *analytics.Report
	Reason       error // why the timeline is empty, nil otherwise
	Elapsed      time.Duration
}

// Analyzer wires the pipeline stages. All stages hold configuration only,
// so one Analyzer may serve concurrent sessions.
type Analyzer struct {
	extractor  *features.Extractor
	builder    *motion.Builder
	segmenter  *segment.Segmenter
	classifier classify.Classifier
	refiner    *classify.Refiner
	assembler  *timeline.Assembler
	engine     *analytics.Engine
	logger     logger.Logger
}

// New creates an Analyzer with default stages overridden by opts.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		extractor:  features.NewExtractor(),
		builder:    motion.NewBuilder(),
		segmenter:  segment.New(),
		classifier: classify.NewGeometry(),
		refiner:    classify.NewRefiner(),
		assembler:  timeline.NewAssembler(),
		engine:     analytics.NewEngine(),
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// frameState is the per-frame output of the sequential pass.
type frameState struct {
	timestamp float64
	features  model.FeatureVector
}

// Analyze processes one session. Only an invalid session or cancellation is
// returned as an error; input that yields no strokes produces a Result with
// an empty timeline and a Reason.
func (a *Analyzer) Analyze(ctx context.Context, s *model.Session) (*Result, error) {
	if s == nil {
		return nil, ErrNilSession
	}
	if s.FPS <= 0 || math.IsNaN(s.FPS) || math.IsInf(s.FPS, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidFPS, s.FPS)
	}

	start := time.Now()
	res := &Result{SessionID: s.ID, FPS: s.FPS, FramesTotal: len(s.Frames)}
	frames := orderFrames(s.Frames, s.FPS)

	var (
		st      = motion.NewState(s.FPS)
		states  = make([]frameState, 0, len(frames))
		raw     = make([]model.MotionSample, 0, len(frames))
		bodies  int
		skipped int
	)
	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !f.Empty() {
			bodies++
		}
		fv, err := a.extractor.Extract(f)
		switch {
		case err == nil:
			res.FramesUsable++
		case errors.Is(err, features.ErrInsufficientLandmarks):
			skipped++
		default:
			return nil, err
		}
		states = append(states, frameState{timestamp: f.Timestamp, features: fv})

		var (
			sample model.MotionSample
			ok     bool
		)
		st, sample, ok = a.builder.Step(st, f)
		if ok {
			raw = append(raw, sample)
		}
	}

	samples := a.builder.Smooth(raw)
	res.Samples = len(samples)

	switch {
	case len(frames) > 0 && bodies == 0:
		res.Reason = ErrNoBody
	case res.FramesUsable < segment.MinSamples || len(samples) < segment.MinSamples:
		res.Reason = fmt.Errorf("%w: %d usable frames, %d motion samples", ErrInsufficientFrames, res.FramesUsable, len(samples))
	}

	var events []model.StrokeEvent
	if res.Reason == nil {
		candidates := dedupe.Resolve(a.segmenter.Detect(samples))
		res.Candidates = len(candidates)
		events = make([]model.StrokeEvent, 0, len(candidates))
		for _, c := range candidates {
			events = append(events, a.classify(c, samples, states))
		}
		events = attachOutcomes(events, s.Outcomes)
	}

	ball := sortedBall(s.Ball)
	res.Timeline = a.refiner.RefineAll(a.assembler.Assemble(events), classify.Context{
		SessionType: s.Type,
		Court:       s.Court,
		Ball:        ball,
	})

	report, err := a.engine.Analyze(ctx, analytics.Input{
		Timeline: res.Timeline,
		Frames:   frames,
		Ball:     ball,
		View:     s.View,
	})
	if err != nil {
		return nil, err
	}
	res.Analytics = report
	res.Elapsed = time.Since(start)

	fields := []logger.Field{
		logger.String("session_id", s.ID),
		logger.Int("frames", res.FramesTotal),
		logger.Int("usable", res.FramesUsable),
		logger.Int("skipped", skipped),
		logger.Int("candidates", res.Candidates),
		logger.Int("strokes", len(res.Timeline)),
		logger.Duration("elapsed", res.Elapsed),
	}
	if res.Reason != nil {
		fields = append(fields, logger.Error(res.Reason))
	}
	a.logger.Info(ctx, "session analyzed", fields...)
	return res, nil
}

func (a *Analyzer) classify(c model.CandidateEvent, samples []model.MotionSample, states []frameState) model.StrokeEvent {
	fv := nearestFeatures(states, c)
	r := a.classifier.Classify(classify.Input{Candidate: c, Features: fv, Samples: samples})
	return model.StrokeEvent{
		Type:        r.Type,
		Confidence:  r.Confidence,
		StartSec:    c.StartTime,
		EndSec:      c.EndTime,
		DurationSec: c.EndTime - c.StartTime,
		PeakSec:     c.PeakTime,
		PeakSpeed:   c.PeakMagnitude,
		Policy:      r.Policy,
		Features:    fv,
		Position:    fv.Position,
	}
}

// nearestFeatures picks the valid feature vector closest to the peak inside
// the candidate interval, falling back to the frame closest to the peak.
func nearestFeatures(states []frameState, c model.CandidateEvent) model.FeatureVector {
	best, bestValid := -1, -1
	bestDist, bestValidDist := math.Inf(1), math.Inf(1)
	for i, st := range states {
		d := math.Abs(st.timestamp - c.PeakTime)
		if d < bestDist {
			best, bestDist = i, d
		}
		inside := st.timestamp >= c.StartTime && st.timestamp <= c.EndTime
		if inside && st.features.Valid && d < bestValidDist {
			bestValid, bestValidDist = i, d
		}
	}
	switch {
	case bestValid >= 0:
		return states[bestValid].features
	case best >= 0:
		return states[best].features
	default:
		return model.FeatureVector{}
	}
}

// orderFrames returns the frames sorted by index. Frames without a supplied
// timestamp get frame/fps; supplied ones, zero included, are kept. The input
// is not modified.
func orderFrames(in []model.PoseFrame, fps float64) []model.PoseFrame {
	frames := make([]model.PoseFrame, len(in))
	copy(frames, in)
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].FrameIndex < frames[j].FrameIndex
	})
	for i := range frames {
		if !frames[i].HasTimestamp {
			frames[i].Timestamp = float64(frames[i].FrameIndex) / fps
			frames[i].HasTimestamp = true
		}
	}
	return frames
}

func sortedBall(in []model.BallSample) []model.BallSample {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.BallSample, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// attachOutcomes sets the outcome of the event whose interval contains each
// mark. Marks outside every event are ignored.
func attachOutcomes(events []model.StrokeEvent, marks []model.OutcomeMark) []model.StrokeEvent {
	if len(marks) == 0 {
		return events
	}
	for _, m := range marks {
		for i := range events {
			if m.AtSec >= events[i].StartSec && m.AtSec <= events[i].EndSec {
				events[i].Outcome = m.Outcome
				break
			}
		}
	}
	return events
}
