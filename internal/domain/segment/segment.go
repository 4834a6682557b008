// Package segment finds candidate stroke intervals in a motion signal.
package segment

import (
	"math"

	"github.com/okian/volley/internal/domain/model"
)

// Default segmentation constants. Speeds are in normalized units per second.
const (
	defaultMinPeakSpeed  = 0.5
	defaultBoundaryRatio = 0.3
	defaultNormalization = 1.0

	// neighbors on each side a peak must strictly exceed
	peakRadius = 2
	// MinSamples is the shortest signal that can hold a peak.
	MinSamples = 2*peakRadius + 1
)

// Segmenter detects local speed peaks and expands them into intervals.
type Segmenter struct {
	minPeak       float64
	boundaryRatio float64
	normalization float64
}

// New creates a segmenter with configuration options.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		minPeak:       defaultMinPeakSpeed,
		boundaryRatio: defaultBoundaryRatio,
		normalization: defaultNormalization,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Detect returns one candidate per accepted peak, in signal order.
// Candidates may overlap; resolving them is the caller's job.
func (s *Segmenter) Detect(samples []model.MotionSample) []model.CandidateEvent {
	if len(samples) < MinSamples {
		return nil
	}

	var out []model.CandidateEvent
	for i := peakRadius; i < len(samples)-peakRadius; i++ {
		if !s.isPeak(samples, i) {
			continue
		}
		out = append(out, s.expand(samples, i))
	}
	return out
}

func (s *Segmenter) isPeak(samples []model.MotionSample, i int) bool {
	v := samples[i].Speed
	if v <= s.minPeak {
		return false
	}
	for d := 1; d <= peakRadius; d++ {
		if v <= samples[i-d].Speed || v <= samples[i+d].Speed {
			return false
		}
	}
	return true
}

// expand walks outward from the peak while speed stays at or above the
// boundary threshold; the first sample below it (or the buffer end) is the
// boundary.
func (s *Segmenter) expand(samples []model.MotionSample, peak int) model.CandidateEvent {
	pv := samples[peak].Speed
	threshold := pv * s.boundaryRatio

	start := peak
	for start > 0 && samples[start].Speed >= threshold {
		start--
	}
	end := peak
	for end < len(samples)-1 && samples[end].Speed >= threshold {
		end++
	}

	return model.CandidateEvent{
		StartTime:     samples[start].Timestamp,
		PeakTime:      samples[peak].Timestamp,
		EndTime:       samples[end].Timestamp,
		PeakMagnitude: pv,
		RawConfidence: math.Min(1, pv/s.normalization),
		StartIndex:    start,
		PeakIndex:     peak,
		EndIndex:      end,
	}
}
