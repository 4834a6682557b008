package analytics

import (
	"fmt"

	"github.com/okian/volley/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// Pressure insight bands on the share of high-pressure rallies lost.
const (
	pressureStruggle = 0.4
	pressureComfort  = 0.2
)

// Summary is the session-level fan-in of all consumers.
type Summary struct {
	Total               int
	Counts              map[model.StrokeType]int
	AverageConfidence   float64
	Consistency         float64 // 1/(1+std of peak speed)
	TotalRallies        int
	AverageRallyLength  float64
	AveragePressure     float64
	HighPressureRallies int
	PressurePerformance float64
	DominantDirection   string
	CourtCoverage       float64
	Insights            []string
}

// Summarize merges consumer results. Counts always contain every stroke
// type and sum to len(timeline).
func Summarize(timeline []model.StrokeEvent, r *Report, highPressure float64) Summary {
	s := Summary{
		Total:               len(timeline),
		Counts:              make(map[model.StrokeType]int, len(model.StrokeTypes())),
		TotalRallies:        r.Rally.Stats.Total,
		AverageRallyLength:  r.Rally.Stats.AverageLength,
		AveragePressure:     r.Rally.Stats.AveragePressure,
		HighPressureRallies: r.Rally.Stats.HighPressure,
		PressurePerformance: r.Rally.Stats.PressurePerformance,
		DominantDirection:   r.Shots.MostCommon,
		CourtCoverage:       r.Heatmap.Coverage,
	}
	for _, t := range model.StrokeTypes() {
		s.Counts[t] = 0
	}

	if len(timeline) > 0 {
		conf := make([]float64, len(timeline))
		speeds := make([]float64, len(timeline))
		for i, e := range timeline {
			t := e.Type
			if _, ok := s.Counts[t]; !ok {
				t = model.Unknown
			}
			s.Counts[t]++
			conf[i] = e.Confidence
			speeds[i] = e.PeakSpeed
		}
		s.AverageConfidence = stat.Mean(conf, nil)
		s.Consistency = 1 / (1 + stat.PopStdDev(speeds, nil))
	}

	s.Insights = append(s.Insights, r.Shots.Insights...)
	s.Insights = append(s.Insights, pressureInsights(r.Rally.Rallies, highPressure)...)
	return s
}

func pressureInsights(rallies []model.Rally, threshold float64) []string {
	var high, lost, decided int
	for _, r := range rallies {
		if r.Pressure <= threshold {
			continue
		}
		high++
		if r.Winner != model.WinnerUnknown {
			decided++
		}
		if r.Winner == model.WinnerOpponent {
			lost++
		}
	}
	if high == 0 || decided == 0 {
		return nil
	}
	rate := float64(lost) / float64(high)
	switch {
	case rate > pressureStruggle:
		return []string{fmt.Sprintf("Higher error rate under pressure (%.0f%%)", rate*100)}
	case rate < pressureComfort:
		return []string{fmt.Sprintf("Performs well under pressure (%.0f%% errors)", rate*100)}
	}
	return nil
}
