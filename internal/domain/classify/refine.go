package classify

import (
	"math"

	"github.com/okian/volley/internal/domain/model"
)

// Refinement constants.
const (
	defaultBallWindow   = 0.5 // seconds after the peak to read the ball track
	defaultDownLineDX   = 0.1
	defaultFastSwing    = 1.5 // normalized units per second
	serveContextBoost   = 0.2
	serveContextCeiling = 0.9
)

// Context is auxiliary per-session input for refinement.
type Context struct {
	SessionType model.SessionType
	Court       *model.CourtContext
	Ball        []model.BallSample // ordered by time
}

// Refiner annotates classified events with court zone, tactical context,
// ball direction and a technique note, and applies context-based
// reclassification.
type Refiner struct {
	ballWindow float64
	downLineDX float64
	fastSwing  float64
}

// RefinerOption configures a Refiner.
type RefinerOption func(*Refiner)

// WithFastSwing sets the peak speed from which technique notes describe a
// stroke as aggressive.
func WithFastSwing(v float64) RefinerOption {
	return func(r *Refiner) {
		if v > 0 {
			r.fastSwing = v
		}
	}
}

// NewRefiner creates a refiner.
func NewRefiner(opts ...RefinerOption) *Refiner {
	r := &Refiner{
		ballWindow: defaultBallWindow,
		downLineDX: defaultDownLineDX,
		fastSwing:  defaultFastSwing,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refine returns a new event. When the type or confidence changes, the
// returned event's Origin points at a copy of e.
func (r *Refiner) Refine(e model.StrokeEvent, c Context) model.StrokeEvent {
	out := e

	if c.Court != nil && c.Court.Calibrated {
		out.Zone = Zone(e.Position.Y, *c.Court)
		out.Context = zoneContext(out.Zone)
		if out.Context == model.ContextServe && (out.Type == model.Forehand || out.Type == model.Backhand) {
			out.Type = model.Serve
			out.Confidence = math.Min(serveContextCeiling, out.Confidence+serveContextBoost)
		}
	}

	if c.SessionType == model.SessionServe && out.Type != model.Serve && out.Type != model.Unknown {
		out.Type = model.Serve
	}

	if d := r.direction(e.PeakSec, c.Ball); d != model.DirectionUnknown {
		out.Direction = d
	}
	out.Technique = r.Technique(out)

	if out.Type != e.Type || out.Confidence != e.Confidence {
		origin := e
		out.Origin = &origin
	}
	return out
}

// RefineAll refines every event of a timeline into a new slice.
func (r *Refiner) RefineAll(events []model.StrokeEvent, c Context) []model.StrokeEvent {
	out := make([]model.StrokeEvent, len(events))
	for i, e := range events {
		out[i] = r.Refine(e, c)
	}
	return out
}

// Zone maps a player position onto the calibrated court lines. Larger y is
// closer to the camera-side baseline.
func Zone(y float64, court model.CourtContext) model.CourtZone {
	switch {
	case y > court.BaselineY:
		return model.ZoneBaseline
	case y > court.ServiceY:
		return model.ZoneMidCourt
	case y > court.NetY:
		return model.ZoneServiceBox
	default:
		return model.ZoneNet
	}
}

func zoneContext(z model.CourtZone) model.StrokeContext {
	switch z {
	case model.ZoneServiceBox:
		return model.ContextServe
	case model.ZoneNet:
		return model.ContextApproach
	case model.ZoneBaseline, model.ZoneMidCourt:
		return model.ContextRally
	default:
		return model.ContextUnknown
	}
}

// direction reads the ball track right after contact: a mostly straight
// ball is down the line, anything else cross court.
func (r *Refiner) direction(peak float64, ball []model.BallSample) model.ShotDirection {
	var first, last *model.BallSample
	for i := range ball {
		b := &ball[i]
		if b.Timestamp < peak || b.Timestamp > peak+r.ballWindow {
			continue
		}
		if first == nil {
			first = b
		}
		last = b
	}
	if first == nil || first == last {
		return model.DirectionUnknown
	}
	if math.Abs(last.X-first.X) < r.downLineDX {
		return model.DirectionDownLine
	}
	return model.DirectionCrossCourt
}
