package classify_test

import (
	"math"
	"testing"

	"github.com/okian/volley/internal/domain/classify"
	"github.com/okian/volley/internal/domain/features"
	"github.com/okian/volley/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// swing builds a five sample interval moving with constant velocity.
func swing(vx, vy float64) classify.Input {
	samples := make([]model.MotionSample, 5)
	for i := range samples {
		samples[i] = model.MotionSample{Timestamp: float64(i) * 0.033, VX: vx, VY: vy}
	}
	return classify.Input{
		Candidate: model.CandidateEvent{StartIndex: 0, PeakIndex: 2, EndIndex: 4, PeakMagnitude: math.Hypot(vx, vy)},
		Samples:   samples,
	}
}

func TestVelocity(t *testing.T) {
	Convey("Given the velocity policy", t, func() {
		v := classify.NewVelocity()

		Convey("When a fast swing goes up", func() {
			r := v.Classify(swing(0.1, -2.2))

			Convey("Then it is a serve", func() {
				So(r.Type, ShouldEqual, model.Serve)
				So(r.Confidence, ShouldBeBetweenOrEqual, 0.8, 0.9)
				So(r.Policy, ShouldEqual, classify.PolicyVelocity)
			})
		})

		Convey("When a fast swing comes down", func() {
			So(v.Classify(swing(0.1, 2.2)).Type, ShouldEqual, model.Overhead)
		})

		Convey("When a moderate swing moves to the right", func() {
			r := v.Classify(swing(1.0, 0))

			Convey("Then it is a forehand", func() {
				So(r.Type, ShouldEqual, model.Forehand)
				So(r.Confidence, ShouldAlmostEqual, 0.85, 1e-9)
			})
		})

		Convey("When a moderate swing moves to the left", func() {
			So(v.Classify(swing(-1.0, 0)).Type, ShouldEqual, model.Backhand)
		})

		Convey("When the player is left-handed", func() {
			left := classify.NewVelocity(classify.WithDominantSide(features.Left))
			So(left.Classify(swing(-1.0, 0)).Type, ShouldEqual, model.Forehand)
		})

		Convey("When the swing is short and slow", func() {
			r := v.Classify(swing(0.3, 0))

			Convey("Then it is a volley", func() {
				So(r.Type, ShouldEqual, model.Volley)
				So(r.Confidence, ShouldAlmostEqual, 0.5, 1e-9)
			})
		})

		Convey("When there is no motion at all", func() {
			So(v.Classify(classify.Input{}).Type, ShouldEqual, model.Unknown)
		})
	})

	Convey("Given a cascade of geometry then velocity", t, func() {
		c := classify.New(classify.PolicyCascade)

		Convey("When the peak frame has no features", func() {
			r := c.Classify(swing(1.0, 0))

			Convey("Then the velocity policy decides", func() {
				So(c.Name(), ShouldEqual, classify.PolicyCascade)
				So(r.Type, ShouldEqual, model.Forehand)
				So(r.Policy, ShouldEqual, classify.PolicyVelocity)
			})
		})

		Convey("When geometry succeeds", func() {
			in := swing(-1.0, 0)
			in.Features = model.FeatureVector{Valid: true, WristsAboveShoulders: true, WristHeightDiff: 0.2}
			r := c.Classify(in)

			Convey("Then its label wins", func() {
				So(r.Type, ShouldEqual, model.Serve)
				So(r.Policy, ShouldEqual, classify.PolicyGeometry)
			})
		})
	})

	Convey("Given a policy name", t, func() {
		So(classify.New("velocity").Name(), ShouldEqual, classify.PolicyVelocity)
		So(classify.New("").Name(), ShouldEqual, classify.PolicyGeometry)
	})
}
