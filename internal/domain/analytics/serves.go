package analytics

import (
	"fmt"

	"github.com/okian/volley/internal/domain/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ServeGroup aggregates first or second serves.
type ServeGroup struct {
	Count        int
	AverageSpeed float64
}

// ServeStats summarises the serves of a session.
type ServeStats struct {
	Count             int
	SpeedMean         float64
	SpeedMax          float64
	SpeedMin          float64
	SpeedStd          float64
	DurationMean      float64
	First             ServeGroup
	Second            ServeGroup
	AverageInterval   float64 // seconds between consecutive serves
	RhythmConsistency float64
	Rhythm            Rhythm
	Placement         Placement
	Toss              TossAnalysis
	Insights          []string
}

// Rhythm buckets the intervals between serves.
type Rhythm struct {
	Quick     int // under 10 s
	Normal    int // 10 to 25 s
	Slow      int // over 25 s
	Preferred string
}

// Serve rhythm bands and insight thresholds.
const (
	quickServe      = 10.0
	slowServe       = 25.0
	zonePreference  = 60.0 // percent
	weakPlacement   = 0.7
	weakToss        = 0.8
	weakServeSpread = 0.7
	weakServeSpeed  = 1.0 // normalized units per second
)

// AnalyzeServes computes serve statistics. A serve starting within window
// seconds of the previous stroke's end, when that stroke was also a serve,
// counts as a second serve.
func AnalyzeServes(timeline []model.StrokeEvent, window float64) ServeStats {
	var (
		speeds, durations, intervals []float64
		first, second                []float64
		prev                         *model.StrokeEvent
	)
	lastServe := -1.0
	for i := range timeline {
		e := &timeline[i]
		if e.Type == model.Serve {
			speeds = append(speeds, e.PeakSpeed)
			durations = append(durations, e.DurationSec)
			if prev != nil && prev.Type == model.Serve && e.StartSec-prev.EndSec <= window {
				second = append(second, e.PeakSpeed)
			} else {
				first = append(first, e.PeakSpeed)
			}
			if lastServe >= 0 {
				intervals = append(intervals, e.StartSec-lastServe)
			}
			lastServe = e.StartSec
		}
		prev = e
	}

	s := ServeStats{Count: len(speeds)}
	if s.Count == 0 {
		return s
	}
	s.SpeedMean = stat.Mean(speeds, nil)
	s.SpeedMax = floats.Max(speeds)
	s.SpeedMin = floats.Min(speeds)
	s.SpeedStd = stat.PopStdDev(speeds, nil)
	s.DurationMean = stat.Mean(durations, nil)
	s.First = group(first)
	s.Second = group(second)
	if len(intervals) > 0 {
		s.AverageInterval = stat.Mean(intervals, nil)
		s.RhythmConsistency = 1 / (1 + stat.PopStdDev(intervals, nil))
		s.Rhythm = rhythm(intervals)
	}
	return s
}

func rhythm(intervals []float64) Rhythm {
	var r Rhythm
	for _, v := range intervals {
		switch {
		case v < quickServe:
			r.Quick++
		case v > slowServe:
			r.Slow++
		default:
			r.Normal++
		}
	}
	switch {
	case r.Quick > max(r.Normal, r.Slow):
		r.Preferred = "quick"
	case r.Normal > r.Slow:
		r.Preferred = "normal"
	default:
		r.Preferred = "slow"
	}
	return r
}

// serveInsights reads placement, toss and speed spread of the serves.
func serveInsights(timeline []model.StrokeEvent, s ServeStats) []string {
	if s.Count == 0 {
		return nil
	}
	var out []string
	dominant, share := ZoneUnknown, 0.0
	for _, z := range ServeZones() {
		if z != ZoneUnknown && s.Placement.Percent[z] > share {
			dominant, share = z, s.Placement.Percent[z]
		}
	}
	if share > zonePreference {
		out = append(out, fmt.Sprintf("Strong preference for %s serves (%.0f%%)", dominant, share))
	}
	if s.Placement.Counts[ZoneUnknown] < s.Count && s.Placement.Consistency < weakPlacement {
		out = append(out, "Work on serve placement consistency")
	}
	if len(s.Toss.Readings) > 0 && s.Toss.HeightConsistency < weakToss {
		out = append(out, "Focus on toss height consistency for better serves")
	}

	speeds := make([]float64, 0, s.Count)
	for _, e := range timeline {
		if e.Type == model.Serve {
			speeds = append(speeds, e.PeakSpeed)
		}
	}
	if spreadConsistency(speeds) < weakServeSpread {
		out = append(out, "Work on serve speed consistency")
	}
	if s.SpeedMean < weakServeSpeed {
		out = append(out, "Consider increasing serve power")
	}
	return out
}

func group(speeds []float64) ServeGroup {
	if len(speeds) == 0 {
		return ServeGroup{}
	}
	return ServeGroup{Count: len(speeds), AverageSpeed: stat.Mean(speeds, nil)}
}
