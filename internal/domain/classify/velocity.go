package classify

import (
	"math"

	"github.com/okian/volley/internal/domain/model"
)

// Velocity classifies from the peak magnitude and the average direction of
// the motion over the candidate interval.
type Velocity struct {
	cfg settings
}

// NewVelocity creates the velocity-direction policy.
func NewVelocity(opts ...Option) *Velocity {
	return &Velocity{cfg: apply(opts)}
}

// Name implements Classifier.
func (v *Velocity) Name() string { return PolicyVelocity }

// Classify implements Classifier.
func (v *Velocity) Classify(in Input) Result {
	c := in.Candidate
	peak := c.PeakMagnitude
	vx, vy := meanVelocity(in.Samples, c.StartIndex, c.EndIndex)
	hx := vx * v.cfg.side.Sign()

	var (
		t    model.StrokeType
		conf float64
	)
	switch {
	case peak > v.cfg.verticalSpeed && math.Abs(vy) > math.Abs(vx):
		// image y grows downward: upward swings are serves
		t = model.Serve
		if vy > 0 {
			t = model.Overhead
		}
		conf = 0.6 + 0.3*math.Min(1, (peak-v.cfg.verticalSpeed)/v.cfg.verticalSpeed)
	case peak > v.cfg.groundSpeed:
		share := 0.0
		if peak > 0 {
			share = math.Min(1, math.Abs(hx)/peak)
		}
		switch {
		case hx > v.cfg.directionEps:
			t, conf = model.Forehand, 0.55+0.3*share
		case hx < -v.cfg.directionEps:
			t, conf = model.Backhand, 0.55+0.3*share
		default:
			t, conf = model.Forehand, 0.45
		}
	case peak > 0:
		t, conf = model.Volley, 0.4+0.2*math.Min(1, peak/v.cfg.groundSpeed)
	default:
		return Result{Type: model.Unknown, Policy: PolicyVelocity}
	}

	conf = clamp01(math.Min(conf, 0.9))
	if conf < v.cfg.floor {
		t = model.Unknown
	}
	return Result{Type: t, Confidence: conf, Policy: PolicyVelocity}
}

// meanVelocity averages the velocity components over samples[lo..hi].
func meanVelocity(samples []model.MotionSample, lo, hi int) (float64, float64) {
	lo = max(0, lo)
	hi = min(len(samples)-1, hi)
	if hi < lo {
		return 0, 0
	}
	var sx, sy float64
	for _, s := range samples[lo : hi+1] {
		sx += s.VX
		sy += s.VY
	}
	n := float64(hi - lo + 1)
	return sx / n, sy / n
}
