package analytics

import (
	"math"

	"github.com/okian/volley/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// Toss reading constants. Heights are rough meters from normalized image
// units; timings are seconds from the toss apex to contact.
const (
	tossHeightScale   = 3.0
	tossMinSamples    = 3
	tossMinVisibility = 0.5

	tossIdealHeightLo = 1.8
	tossIdealHeightHi = 2.2
	tossIdealTimingLo = 0.8
	tossIdealTimingHi = 1.2
)

// Consistency ratings.
const (
	RatingExcellent = "Excellent"
	RatingGood      = "Good"
	RatingFair      = "Fair"
	RatingPoor      = "Needs Improvement"
)

// TossReading is the tossing hand trajectory of one serve.
type TossReading struct {
	StrokeID int
	ApexSec  float64
	Height   float64
	Timing   float64
	Score    float64 // 0..1
}

// TossAnalysis summarises toss height and timing across serves.
type TossAnalysis struct {
	Readings          []TossReading
	HeightMean        float64
	HeightStd         float64
	HeightConsistency float64
	TimingMean        float64
	TimingStd         float64
	TimingConsistency float64
	TechniqueScore    float64
	Rating            string
	Recommendations   []string
}

// AnalyzeToss follows the tossing wrist over the window seconds before each
// serve's contact. Serves with fewer than three visible wrist positions are
// skipped.
func AnalyzeToss(timeline []model.StrokeEvent, frames []model.PoseFrame, wrist int, window float64) TossAnalysis {
	var t TossAnalysis
	for _, e := range timeline {
		if e.Type != model.Serve {
			continue
		}
		if r, ok := tossReading(e, frames, wrist, window); ok {
			t.Readings = append(t.Readings, r)
		}
	}
	if len(t.Readings) == 0 {
		return t
	}

	heights := make([]float64, len(t.Readings))
	timings := make([]float64, len(t.Readings))
	scores := make([]float64, len(t.Readings))
	for i, r := range t.Readings {
		heights[i], timings[i], scores[i] = r.Height, r.Timing, r.Score
	}
	t.HeightMean, t.HeightStd = stat.PopMeanStdDev(heights, nil)
	t.TimingMean, t.TimingStd = stat.PopMeanStdDev(timings, nil)
	t.HeightConsistency = spreadConsistency(heights)
	t.TimingConsistency = spreadConsistency(timings)
	t.TechniqueScore = stat.Mean(scores, nil)
	t.Rating = rateToss(t.HeightStd, t.TimingStd)
	t.Recommendations = tossRecommendations(t)
	return t
}

func tossReading(e model.StrokeEvent, frames []model.PoseFrame, wrist int, window float64) (TossReading, bool) {
	type pos struct {
		t, y float64
	}
	var track []pos
	for _, f := range frames {
		if f.Timestamp < e.PeakSec-window || f.Timestamp > e.PeakSec {
			continue
		}
		if l, ok := f.Visible(wrist, tossMinVisibility); ok {
			track = append(track, pos{t: f.Timestamp, y: l.Y})
		}
	}
	if len(track) < tossMinSamples {
		return TossReading{}, false
	}

	apex := track[0]
	for _, p := range track[1:] {
		if p.y < apex.y {
			apex = p
		}
	}
	r := TossReading{
		StrokeID: e.ID,
		ApexSec:  apex.t,
		Height:   math.Max(0, (track[0].y-apex.y)*tossHeightScale),
		Timing:   math.Max(0, e.PeakSec-apex.t),
	}
	r.Score = (bandScore(r.Height, tossIdealHeightLo, tossIdealHeightHi, 2) +
		bandScore(r.Timing, tossIdealTimingLo, tossIdealTimingHi, 1)) / 2
	return r, true
}

// bandScore is 1 inside [lo, hi] and falls linearly to 0 at span outside it.
func bandScore(v, lo, hi, span float64) float64 {
	if v >= lo && v <= hi {
		return 1
	}
	dev := math.Min(math.Abs(v-lo), math.Abs(v-hi))
	return math.Max(0, 1-dev/span)
}

func rateToss(heightStd, timingStd float64) string {
	switch {
	case heightStd < 0.2 && timingStd < 0.1:
		return RatingExcellent
	case heightStd < 0.4 && timingStd < 0.2:
		return RatingGood
	case heightStd < 0.6 && timingStd < 0.3:
		return RatingFair
	default:
		return RatingPoor
	}
}

func tossRecommendations(t TossAnalysis) []string {
	var out []string
	if t.HeightStd > 0.3 {
		out = append(out, "Focus on consistent toss height - practice with target")
	}
	switch {
	case t.HeightMean < 1.5:
		out = append(out, "Increase toss height for more power and time")
	case t.HeightMean > 2.5:
		out = append(out, "Lower toss height for better control")
	}
	if t.TimingStd > 0.2 {
		out = append(out, "Work on toss timing consistency")
	}
	switch {
	case t.TimingMean < 0.6:
		out = append(out, "Allow more time between toss and contact")
	case t.TimingMean > 1.5:
		out = append(out, "Reduce delay between toss and contact")
	}
	switch {
	case t.TechniqueScore < 0.6:
		out = append(out, "Overall toss technique needs improvement")
	case t.TechniqueScore > 0.8:
		out = append(out, "Excellent toss technique - maintain consistency")
	}
	return out
}
