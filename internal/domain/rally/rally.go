// Package rally groups a stroke timeline into rallies and derives pressure,
// momentum and session statistics from them.
package rally

import (
	"context"
	"math"
	"sort"

	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/scoring"
	"github.com/okian/volley/pkg/logger"
)

const (
	defaultGap          = 3.0
	defaultMomentumStep = 0.5
	defaultHighPressure = 0.7
)

// State of the segmentation state machine.
type State int

// Segmentation states.
const (
	NoActiveRally State = iota
	InRally
)

func (s State) String() string {
	if s == InRally {
		return "in_rally"
	}
	return "no_active_rally"
}

// MomentumPoint is one entry of the momentum chart, taken at rally end.
type MomentumPoint struct {
	Time     float64
	Momentum float64
	RallyID  int
	Pressure float64
}

// Stats are reductions over a finished rally list.
type Stats struct {
	Total               int
	AverageLength       float64
	MedianLength        float64
	Longest             int
	Shortest            int
	AverageDuration     float64
	TotalPlayingTime    float64
	AveragePressure     float64
	HighPressure        int
	PressurePerformance float64 // player wins / high-pressure rallies
}

// Analysis is the aggregator output.
type Analysis struct {
	Rallies  []model.Rally
	Momentum []MomentumPoint
	Stats    Stats
}

// Aggregator segments timelines into rallies.
type Aggregator struct {
	gap          float64
	momentumStep float64
	highPressure float64
	scorer       scoring.Scorer
	logger       logger.Logger
}

// NewAggregator creates an Aggregator with defaults overridden by opts.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		gap:          defaultGap,
		momentumStep: defaultMomentumStep,
		highPressure: defaultHighPressure,
		scorer:       scoring.NewPressureScorer(),
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HighPressure returns the high-pressure threshold.
func (a *Aggregator) HighPressure() float64 {
	return a.highPressure
}

// Aggregate runs the rally state machine over a timeline sorted by start.
func (a *Aggregator) Aggregate(timeline []model.StrokeEvent) Analysis {
	var (
		rallies []model.Rally
		current []model.StrokeEvent
		state   = NoActiveRally
		served  bool // current rally has a non-serve stroke
	)

	closeRally := func() {
		if len(current) > 0 {
			rallies = append(rallies, a.build(len(rallies)+1, current))
		}
		current = nil
		served = false
		state = NoActiveRally
	}

	for _, e := range timeline {
		if state == InRally {
			last := current[len(current)-1]
			switch {
			case e.StartSec-last.EndSec > a.gap:
				closeRally()
			case e.Type == model.Serve && served:
				closeRally()
			}
		}
		current = append(current, e)
		if e.Type != model.Serve {
			served = true
		}
		state = InRally
	}
	closeRally()

	momentum := a.momentum(rallies)
	stats := a.Stats(rallies)
	a.logger.Debug(context.Background(), "rallies aggregated",
		logger.Int("strokes", len(timeline)),
		logger.Int("rallies", stats.Total),
		logger.Float64("avg_pressure", stats.AveragePressure),
	)
	return Analysis{Rallies: rallies, Momentum: momentum, Stats: stats}
}

func (a *Aggregator) build(id int, events []model.StrokeEvent) model.Rally {
	r := model.Rally{
		ID:       id,
		Events:   events,
		StartSec: events[0].StartSec,
		EndSec:   events[len(events)-1].EndSec,
		Winner:   Winner(events),
		Pressure: a.scorer.Score(events).Pressure,
	}
	r.DurationSec = math.Max(0, r.EndSec-r.StartSec)
	return r
}

// Winner credits the rally from the outcome of its final stroke. An outcome
// on an earlier stroke does not decide the rally.
func Winner(events []model.StrokeEvent) model.Winner {
	if len(events) == 0 {
		return model.WinnerUnknown
	}
	switch events[len(events)-1].Outcome {
	case model.OutcomeWinner:
		return model.WinnerPlayer
	case model.OutcomeError:
		return model.WinnerOpponent
	default:
		return model.WinnerUnknown
	}
}

func (a *Aggregator) momentum(rallies []model.Rally) []MomentumPoint {
	points := make([]MomentumPoint, 0, len(rallies))
	m := 0.0
	for _, r := range rallies {
		switch r.Winner {
		case model.WinnerPlayer:
			m += r.Pressure * a.momentumStep
		case model.WinnerOpponent:
			m -= r.Pressure * a.momentumStep
		}
		m = math.Max(-1, math.Min(1, m))
		points = append(points, MomentumPoint{
			Time:     r.EndSec,
			Momentum: m,
			RallyID:  r.ID,
			Pressure: r.Pressure,
		})
	}
	return points
}

// Stats reduces a rally list. It never looks at prior results.
func (a *Aggregator) Stats(rallies []model.Rally) Stats {
	s := Stats{Total: len(rallies)}
	if s.Total == 0 {
		return s
	}

	lengths := make([]int, 0, len(rallies))
	var sumLen, playerHigh int
	var pressure float64
	s.Shortest = math.MaxInt
	for _, r := range rallies {
		n := r.Len()
		lengths = append(lengths, n)
		sumLen += n
		s.Longest = max(s.Longest, n)
		s.Shortest = min(s.Shortest, n)
		s.TotalPlayingTime += r.DurationSec
		pressure += r.Pressure
		if r.Pressure > a.highPressure {
			s.HighPressure++
			if r.Winner == model.WinnerPlayer {
				playerHigh++
			}
		}
	}

	total := float64(s.Total)
	s.AverageLength = float64(sumLen) / total
	s.MedianLength = median(lengths)
	s.AverageDuration = s.TotalPlayingTime / total
	s.AveragePressure = pressure / total
	if s.HighPressure > 0 {
		s.PressurePerformance = float64(playerHigh) / float64(s.HighPressure)
	}
	return s
}

func median(v []int) float64 {
	if len(v) == 0 {
		return 0
	}
	sorted := append([]int(nil), v...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}
