package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/volley/internal/domain/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Tennis IQ scale: five components of 50..200 points each.
const (
	iqComponentMin   = 50.0
	iqComponentMax   = 200.0
	iqEmptyComponent = 100.0
	iqWeakComponent  = 120.0
	iqNeutral        = 0.5

	// tourBenchmark is the component total of a top tour player.
	tourBenchmark = 960.0
	// powerReference is the mean peak speed, in units/s, that scores full power.
	powerReference = 5.0
	coverageCells  = 12
	strokeVariety  = 6
)

// IQLevel is a named band of the Tennis IQ total.
type IQLevel struct {
	Name string
	Min  float64
	Max  float64
}

// IQLevels lists the bands from the top down.
func IQLevels() []IQLevel {
	return []IQLevel{
		{"Legend", 950, 1000},
		{"ATP Top 10", 900, 949},
		{"Professional", 800, 899},
		{"Elite Academy", 700, 799},
		{"Advanced Club", 600, 699},
		{"Intermediate", 500, 599},
		{"Recreational", 400, 499},
		{"Learning", 300, 399},
		{"Beginner", 200, 299},
		{"Newcomer", 100, 199},
		{"Just Started", 0, 99},
	}
}

// IQComponents are the five Tennis IQ parts.
type IQComponents struct {
	Technical float64
	Tactical  float64
	Mental    float64
	Physical  float64
	Match     float64
}

// Total sums the components.
func (c IQComponents) Total() float64 {
	return c.Technical + c.Tactical + c.Mental + c.Physical + c.Match
}

// TennisIQ is the overall rating of a session with its readings.
type TennisIQ struct {
	Components   IQComponents
	Total        float64
	Level        string
	NextLevel    string
	ProPercent   float64 // Total relative to a top tour player
	Strengths    []string
	Weaknesses   []string
	Improvements []string
}

// ScoreIQ reduces the timeline and the consumer results to a Tennis IQ.
func ScoreIQ(timeline []model.StrokeEvent, r *Report) TennisIQ {
	in := newIQInput(timeline, r)
	c := IQComponents{
		Technical: in.component(0.3*in.consistency() + 0.2*in.variety() + 0.3*in.technique() + 0.2*in.accuracy()),
		Tactical:  in.component(0.4*in.positioning() + 0.4*in.selection() + 0.2*in.patterns()),
		Mental:    in.component(0.4*in.pressure() + 0.3*in.steadiness() + 0.3*in.recovery()),
		Physical:  in.component(0.4*in.power() + 0.3*in.coverage() + 0.3*in.endurance()),
		Match:     in.component(0.4*in.adaptation() + 0.3*(in.variety()+in.positioning())/2 + 0.3*in.learning()),
	}

	iq := TennisIQ{Components: c, Total: c.Total()}
	iq.ProPercent = iq.Total / tourBenchmark * 100
	levels := IQLevels()
	for i, l := range levels {
		if iq.Total >= l.Min {
			iq.Level = l.Name
			if i > 0 {
				iq.NextLevel = fmt.Sprintf("Reach %.0f total points to become %s", levels[i-1].Min, levels[i-1].Name)
			}
			break
		}
	}

	named := []struct {
		name  string
		score float64
	}{
		{"Technical Skill", c.Technical},
		{"Tactical Intelligence", c.Tactical},
		{"Mental Toughness", c.Mental},
		{"Physical Attributes", c.Physical},
		{"Match Intelligence", c.Match},
	}
	sort.SliceStable(named, func(i, j int) bool { return named[i].score > named[j].score })
	for _, n := range named[:2] {
		iq.Strengths = append(iq.Strengths, fmt.Sprintf("%s: %.0f/200", n.name, n.score))
	}
	for _, n := range named[len(named)-2:] {
		iq.Weaknesses = append(iq.Weaknesses, fmt.Sprintf("%s: %.0f/200", n.name, n.score))
	}

	if c.Technical < iqWeakComponent {
		iq.Improvements = append(iq.Improvements, "Focus on stroke consistency and technique")
	}
	if c.Tactical < iqWeakComponent {
		iq.Improvements = append(iq.Improvements, "Work on shot selection and positioning")
	}
	if c.Mental < iqWeakComponent {
		iq.Improvements = append(iq.Improvements, "Practice pressure situations")
	}
	return iq
}

// iqInput holds the series every component reads.
type iqInput struct {
	timeline []model.StrokeEvent
	report   *Report
	conf     []float64
	speeds   []float64 // positive peak speeds only
}

func newIQInput(timeline []model.StrokeEvent, r *Report) iqInput {
	in := iqInput{timeline: timeline, report: r, conf: make([]float64, len(timeline))}
	for i, e := range timeline {
		in.conf[i] = e.Confidence
		if e.PeakSpeed > 0 {
			in.speeds = append(in.speeds, e.PeakSpeed)
		}
	}
	return in
}

func (in iqInput) component(v float64) float64 {
	if len(in.timeline) == 0 {
		return iqEmptyComponent
	}
	return math.Max(iqComponentMin, math.Min(iqComponentMax, v*iqComponentMax))
}

func (in iqInput) consistency() float64 {
	if len(in.timeline) < 3 {
		return iqNeutral
	}
	confidence := 1 - stat.PopStdDev(in.conf, nil)
	velocity := iqNeutral
	if len(in.speeds) > 0 {
		mean, sd := stat.PopMeanStdDev(in.speeds, nil)
		velocity = 1 - sd/(mean+1e-6)
	}
	return (confidence + velocity) / 2
}

func (in iqInput) variety() float64 {
	seen := make(map[model.StrokeType]struct{})
	for _, e := range in.timeline {
		seen[e.Type] = struct{}{}
	}
	return math.Min(1, float64(len(seen))/strokeVariety)
}

func (in iqInput) technique() float64 {
	if len(in.conf) == 0 {
		return iqNeutral
	}
	return stat.Mean(in.conf, nil)
}

// accuracy is the winner share of strokes marked winner or error.
func (in iqInput) accuracy() float64 {
	var won, decided int
	for _, e := range in.timeline {
		switch e.Outcome {
		case model.OutcomeWinner:
			won++
			decided++
		case model.OutcomeError:
			decided++
		}
	}
	if decided == 0 {
		return iqNeutral
	}
	return float64(won) / float64(decided)
}

// positioning rewards strokes played away from mid court.
func (in iqInput) positioning() float64 {
	var zoned, mid int
	for _, e := range in.timeline {
		if e.Zone == model.ZoneUnknown {
			continue
		}
		zoned++
		if e.Zone == model.ZoneMidCourt {
			mid++
		}
	}
	if zoned == 0 {
		return iqNeutral
	}
	return 1 - float64(mid)/float64(zoned)
}

func (in iqInput) selection() float64 {
	if len(in.timeline) == 0 {
		return iqNeutral
	}
	good := 0
	for _, e := range in.timeline {
		switch {
		case e.Zone == model.ZoneBaseline && (e.Type == model.Forehand || e.Type == model.Backhand),
			e.Zone == model.ZoneNet && e.Type == model.Volley,
			e.Zone == model.ZoneServiceBox && e.Type == model.Serve:
			good++
		}
	}
	return float64(good) / float64(len(in.timeline))
}

// patterns counts serve and volley sequences.
func (in iqInput) patterns() float64 {
	n := len(in.timeline)
	if n < 3 {
		return iqNeutral
	}
	found := 0
	for i := 0; i+1 < n; i++ {
		if in.timeline[i].Type == model.Serve && in.timeline[i+1].Type == model.Volley {
			found++
		}
	}
	return math.Min(1, float64(found)/float64(max(1, n/3)))
}

func (in iqInput) pressure() float64 {
	if in.report == nil || in.report.Rally.Stats.HighPressure == 0 {
		return iqNeutral
	}
	return in.report.Rally.Stats.PressurePerformance
}

func (in iqInput) steadiness() float64 {
	if len(in.timeline) < 3 {
		return iqNeutral
	}
	return math.Max(0, 1-stat.PopStdDev(in.conf, nil))
}

// recovery is the share of low-confidence strokes followed by a better one.
func (in iqInput) recovery() float64 {
	n := len(in.conf)
	if n < 3 {
		return iqNeutral
	}
	rec := 0
	for i := 1; i < n; i++ {
		if in.conf[i-1] < iqNeutral && in.conf[i] > in.conf[i-1] {
			rec++
		}
	}
	return float64(rec) / float64(max(1, n-1))
}

func (in iqInput) learning() float64 {
	n := len(in.conf)
	if n < 3 {
		return iqNeutral
	}
	var improved, chances int
	for i := 1; i < n; i++ {
		if in.conf[i-1] < iqNeutral {
			chances++
			if in.conf[i] > in.conf[i-1] {
				improved++
			}
		}
	}
	return float64(improved) / float64(max(1, chances))
}

func (in iqInput) power() float64 {
	if len(in.speeds) == 0 {
		return 0.3
	}
	return math.Min(1, stat.Mean(in.speeds, nil)/powerReference)
}

func (in iqInput) coverage() float64 {
	if in.report == nil || in.report.Heatmap.Total == 0 {
		return iqNeutral
	}
	active := 0
	for _, row := range in.report.Heatmap.Grid {
		for _, v := range row {
			if v > 0 {
				active++
			}
		}
	}
	return math.Min(1, float64(active)/coverageCells)
}

// endurance compares the confidence of the second half to the first.
func (in iqInput) endurance() float64 {
	n := len(in.conf)
	if n < 10 {
		return iqNeutral
	}
	first := stat.Mean(in.conf[:n/2], nil)
	second := stat.Mean(in.conf[n/2:], nil)
	return math.Min(1, second/(first+1e-6))
}

// adaptation is the trend of confidence over the session.
func (in iqInput) adaptation() float64 {
	n := len(in.conf)
	if n < 5 {
		return iqNeutral
	}
	x := make([]float64, n)
	floats.Span(x, 0, float64(n-1))
	_, slope := stat.LinearRegression(x, in.conf, nil, false)
	return iqNeutral + math.Max(-0.5, math.Min(0.5, slope*10))
}
