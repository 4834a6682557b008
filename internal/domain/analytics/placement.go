package analytics

import (
	"math"

	"github.com/okian/volley/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// ServeZone is where a serve lands across the service box.
type ServeZone string

// Serve zones.
const (
	ZoneT       ServeZone = "T"
	ZoneBody    ServeZone = "Body"
	ZoneWide    ServeZone = "Wide"
	ZoneUnknown ServeZone = "Unknown"
)

// ServeZones lists the zones in report order.
func ServeZones() []ServeZone {
	return []ServeZone{ZoneT, ZoneBody, ZoneWide, ZoneUnknown}
}

// Horizontal bands of the service box, in normalized image x.
const (
	tHalfWidth    = 0.05
	bodyHalfWidth = 0.15
	courtCenterX  = 0.5
)

// ServePlacement is the zone of one serve.
type ServePlacement struct {
	StrokeID int
	Zone     ServeZone
	Speed    float64
}

// Placement summarises where serves land.
type Placement struct {
	Serves          []ServePlacement
	Counts          map[ServeZone]int
	Percent         map[ServeZone]float64
	ZoneConsistency map[ServeZone]float64 // 1/(1+std of speed) per zone
	Consistency     float64               // mean of ZoneConsistency
}

// AnalyzePlacement reads the last ball sample within window seconds after
// each serve's peak. Serves without ball data land in ZoneUnknown.
func AnalyzePlacement(timeline []model.StrokeEvent, ball []model.BallSample, window float64) Placement {
	p := Placement{
		Counts:          make(map[ServeZone]int, 4),
		Percent:         make(map[ServeZone]float64, 4),
		ZoneConsistency: make(map[ServeZone]float64, 4),
	}
	speeds := make(map[ServeZone][]float64)
	for _, e := range timeline {
		if e.Type != model.Serve {
			continue
		}
		z := landingZone(e.PeakSec, ball, window)
		p.Serves = append(p.Serves, ServePlacement{StrokeID: e.ID, Zone: z, Speed: e.PeakSpeed})
		p.Counts[z]++
		speeds[z] = append(speeds[z], e.PeakSpeed)
	}
	if len(p.Serves) == 0 {
		return p
	}

	var scores []float64
	for _, z := range ServeZones() {
		p.Percent[z] = float64(p.Counts[z]) / float64(len(p.Serves)) * 100
		v, ok := speeds[z]
		if !ok {
			continue
		}
		c := spreadConsistency(v)
		p.ZoneConsistency[z] = c
		scores = append(scores, c)
	}
	p.Consistency = stat.Mean(scores, nil)
	return p
}

func landingZone(peak float64, ball []model.BallSample, window float64) ServeZone {
	var last *model.BallSample
	for i := range ball {
		b := &ball[i]
		if b.Timestamp > peak && b.Timestamp <= peak+window {
			last = b
		}
	}
	if last == nil {
		return ZoneUnknown
	}
	switch d := math.Abs(last.X - courtCenterX); {
	case d <= tHalfWidth:
		return ZoneT
	case d <= bodyHalfWidth:
		return ZoneBody
	default:
		return ZoneWide
	}
}

// spreadConsistency is 1/(1+σ) for more than one value and 1 otherwise.
func spreadConsistency(v []float64) float64 {
	if len(v) < 2 {
		return 1
	}
	sd := stat.PopStdDev(v, nil)
	if sd == 0 {
		return 1
	}
	return 1 / (1 + sd)
}
