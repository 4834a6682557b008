package analytics

import (
	"fmt"
	"sort"

	"github.com/okian/volley/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// Insight thresholds.
const (
	directionPreference = 0.6
	strokeReliance      = 0.5
)

const unknownLabel = "unknown"

// Pattern describes how one stroke type is played.
type Pattern struct {
	Count               int
	DirectionPreference string
	AverageSpeed        float64
}

// ShotAnalysis covers shot directions and per-stroke patterns.
type ShotAnalysis struct {
	Distribution map[string]int
	MostCommon   string
	Patterns     map[model.StrokeType]Pattern
	Insights     []string
}

// AnalyzeShots computes direction distribution, stroke patterns and
// tactical insights.
func AnalyzeShots(timeline []model.StrokeEvent) ShotAnalysis {
	a := ShotAnalysis{
		Distribution: map[string]int{},
		Patterns:     map[model.StrokeType]Pattern{},
		MostCommon:   unknownLabel,
	}
	if len(timeline) == 0 {
		return a
	}

	byType := map[model.StrokeType][]model.StrokeEvent{}
	for _, e := range timeline {
		a.Distribution[directionLabel(e.Direction)]++
		byType[e.Type] = append(byType[e.Type], e)
	}

	for typ, events := range byType {
		dirs := map[string]int{}
		speeds := make([]float64, len(events))
		for i, e := range events {
			dirs[directionLabel(e.Direction)]++
			speeds[i] = e.PeakSpeed
		}
		pref, _ := mode(dirs)
		a.Patterns[typ] = Pattern{
			Count:               len(events),
			DirectionPreference: pref,
			AverageSpeed:        stat.Mean(speeds, nil),
		}
	}

	n := float64(len(timeline))
	dir, count := mode(a.Distribution)
	a.MostCommon = dir
	if dir != unknownLabel {
		if share := float64(count) / n; share > directionPreference {
			a.Insights = append(a.Insights, fmt.Sprintf("Strong preference for %s shots (%.0f%%)", dir, share*100))
		}
	}

	types := map[string]int{}
	for typ, events := range byType {
		types[string(typ)] = len(events)
	}
	if typ, count := mode(types); typ != string(model.Unknown) {
		if share := float64(count) / n; share > strokeReliance {
			a.Insights = append(a.Insights, fmt.Sprintf("Relies heavily on %s (%.0f%%)", typ, share*100))
		}
	}
	return a
}

func directionLabel(d model.ShotDirection) string {
	if d == model.DirectionUnknown {
		return unknownLabel
	}
	return string(d)
}

// mode returns the most frequent key, breaking ties by name so results do
// not depend on map order.
func mode(counts map[string]int) (string, int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, n := unknownLabel, 0
	for _, k := range keys {
		if counts[k] > n {
			best, n = k, counts[k]
		}
	}
	return best, n
}
