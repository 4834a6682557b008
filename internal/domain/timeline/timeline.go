// Package timeline assembles classified strokes into the canonical timeline.
package timeline

import (
	"slices"
	"sort"

	"github.com/okian/volley/internal/domain/model"
)

// Default assembly constants, seconds.
const (
	defaultMinDuration = 0.1
	defaultMaxDuration = 3.0
)

// Assembler orders events, filters noise by duration and assigns ids.
type Assembler struct {
	minDuration float64
	maxDuration float64 // 0 disables the upper bound
}

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithMinDuration sets the shortest event kept on the timeline.
func WithMinDuration(d float64) Option {
	return func(a *Assembler) {
		if d >= 0 {
			a.minDuration = d
		}
	}
}

// WithMaxDuration sets the longest event kept; 0 keeps everything.
func WithMaxDuration(d float64) Option {
	return func(a *Assembler) {
		if d >= 0 {
			a.maxDuration = d
		}
	}
}

// NewAssembler creates an assembler with configuration options.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		minDuration: defaultMinDuration,
		maxDuration: defaultMaxDuration,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble returns a new slice sorted by start time with 1-based ids and
// durations filled in. Events outside the duration bounds are dropped.
func (a *Assembler) Assemble(events []model.StrokeEvent) []model.StrokeEvent {
	sorted := slices.Clone(events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartSec < sorted[j].StartSec
	})

	out := make([]model.StrokeEvent, 0, len(sorted))
	for _, e := range sorted {
		d := e.EndSec - e.StartSec
		if d <= 0 || d < a.minDuration {
			continue
		}
		if a.maxDuration > 0 && d > a.maxDuration {
			continue
		}
		e.DurationSec = d
		e.ID = len(out) + 1
		out = append(out, e)
	}
	return out
}
