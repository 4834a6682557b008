// Package motion turns a pose frame sequence into a velocity signal.
package motion

import (
	"math"

	"github.com/okian/volley/internal/domain/model"
)

// Default builder configuration constants.
const (
	defaultWindow        = 5
	defaultMinVisibility = 0.5
)

// State is the tracker state between two Step calls. The zero value is the
// state before the first frame.
type State struct {
	Prev     model.Point
	PrevTime float64
	HasPrev  bool
	Frames   int // frames that yielded a representative point

	// Interval replaces a non-advancing timestamp delta. It overrides the
	// builder's frame interval so one Builder can serve sessions recorded at
	// different frame rates.
	Interval float64
}

// NewState returns the initial state for a session sampled at fps.
func NewState(fps float64) State {
	if fps <= 0 {
		return State{}
	}
	return State{Interval: 1 / fps}
}

// Builder computes motion samples. It holds configuration only; all
// per-session state lives in State values owned by the caller.
type Builder struct {
	point         Point
	window        int
	minVisibility float64
	frameInterval float64
	leftDominant  bool
}

// NewBuilder creates a builder with configuration options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		point:         WristMidpoint,
		window:        defaultWindow,
		minVisibility: defaultMinVisibility,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Locate returns the representative point of a frame, if it is visible.
func (b *Builder) Locate(frame model.PoseFrame) (model.Point, bool) {
	switch b.point {
	case Centroid:
		return b.centroid(frame)
	case DominantWrist:
		idx := model.RightWrist
		if b.leftDominant {
			idx = model.LeftWrist
		}
		l, ok := frame.Visible(idx, b.minVisibility)
		return l.Point(), ok
	default:
		l, okL := frame.Visible(model.LeftWrist, b.minVisibility)
		r, okR := frame.Visible(model.RightWrist, b.minVisibility)
		if !okL || !okR {
			return model.Point{}, false
		}
		return model.Point{X: (l.X + r.X) / 2, Y: (l.Y + r.Y) / 2}, true
	}
}

func (b *Builder) centroid(frame model.PoseFrame) (model.Point, bool) {
	var sx, sy float64
	n := 0
	for _, l := range frame.Keypoints {
		if l.Visibility < b.minVisibility {
			continue
		}
		sx += l.X
		sy += l.Y
		n++
	}
	if n == 0 {
		return model.Point{}, false
	}
	return model.Point{X: sx / float64(n), Y: sy / float64(n)}, true
}

// Step feeds one frame to the tracker. It returns the next state and, when
// the frame and the previous usable frame form a valid pair, the sample
// between them. Frames without a representative point leave the state as is.
func (b *Builder) Step(st State, frame model.PoseFrame) (State, model.MotionSample, bool) {
	p, ok := b.Locate(frame)
	if !ok {
		return st, model.MotionSample{}, false
	}

	if !st.HasPrev {
		return State{Prev: p, PrevTime: frame.Timestamp, HasPrev: true, Frames: st.Frames + 1, Interval: st.Interval}, model.MotionSample{}, false
	}

	ts := frame.Timestamp
	dt := ts - st.PrevTime
	if dt <= 0 {
		interval := st.Interval
		if interval <= 0 {
			interval = b.frameInterval
		}
		if interval <= 0 {
			return st, model.MotionSample{}, false
		}
		dt = interval
		ts = st.PrevTime + dt
	}

	vx := (p.X - st.Prev.X) / dt
	vy := (p.Y - st.Prev.Y) / dt
	next := State{Prev: p, PrevTime: ts, HasPrev: true, Frames: st.Frames + 1, Interval: st.Interval}
	return next, model.MotionSample{
		Timestamp: ts,
		Speed:     math.Hypot(vx, vy),
		VX:        vx,
		VY:        vy,
	}, true
}

// Raw computes unsmoothed samples for a frame sequence.
func (b *Builder) Raw(frames []model.PoseFrame) []model.MotionSample {
	var (
		st  State
		out = make([]model.MotionSample, 0, len(frames))
	)
	for _, f := range frames {
		var (
			s  model.MotionSample
			ok bool
		)
		st, s, ok = b.Step(st, f)
		if ok {
			out = append(out, s)
		}
	}
	return out
}

// Build computes samples for a frame sequence and smooths their speed.
func (b *Builder) Build(frames []model.PoseFrame) []model.MotionSample {
	return b.Smooth(b.Raw(frames))
}

// Smooth applies a centered moving average to Speed, shrinking the window at
// the edges. Timestamps and velocity components are left untouched, so a
// symmetric peak keeps its timestamp.
func (b *Builder) Smooth(samples []model.MotionSample) []model.MotionSample {
	out := make([]model.MotionSample, len(samples))
	copy(out, samples)
	if b.window <= 1 || len(samples) < 3 {
		return out
	}

	half := b.window / 2
	for i := range samples {
		lo, hi := max(0, i-half), min(len(samples)-1, i+half)
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += samples[j].Speed
		}
		out[i].Speed = sum / float64(hi-lo+1)
	}
	return out
}
