package segment_test

import (
	"testing"

	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/segment"
	. "github.com/smartystreets/goconvey/convey"
)

func signal(dt float64, speeds ...float64) []model.MotionSample {
	out := make([]model.MotionSample, len(speeds))
	for i, v := range speeds {
		out[i] = model.MotionSample{Timestamp: float64(i+1) * dt, Speed: v}
	}
	return out
}

func TestDetect(t *testing.T) {
	Convey("Given a default segmenter", t, func() {
		seg := segment.New()

		Convey("When the signal has a single isolated peak", func() {
			samples := signal(0.1, 0, 0, 0.1, 0.4, 1.2, 0.5, 0.2, 0, 0)
			got := seg.Detect(samples)

			Convey("Then exactly one candidate peaks on the injected sample", func() {
				So(got, ShouldHaveLength, 1)
				c := got[0]
				So(c.PeakTime, ShouldEqual, samples[4].Timestamp)
				So(c.PeakIndex, ShouldEqual, 4)
				So(c.PeakMagnitude, ShouldEqual, 1.2)
				So(c.RawConfidence, ShouldEqual, 1.0)
			})

			Convey("Then the boundaries stop at the first sample below 30% of the peak", func() {
				c := got[0]
				So(c.StartIndex, ShouldEqual, 2)
				So(c.EndIndex, ShouldEqual, 6)
				So(c.StartTime, ShouldBeLessThan, c.PeakTime)
				So(c.EndTime, ShouldBeGreaterThan, c.PeakTime)
			})
		})

		Convey("When the peak stays below the minimum speed", func() {
			So(seg.Detect(signal(0.1, 0, 0.1, 0.2, 0.45, 0.2, 0.1, 0)), ShouldBeEmpty)
		})

		Convey("When the signal is shorter than five samples", func() {
			So(seg.Detect(signal(0.1, 0, 2, 0, 0)), ShouldBeEmpty)
		})

		Convey("When the peak is a two-sample plateau", func() {
			So(seg.Detect(signal(0.1, 0, 0.2, 1, 1, 0.2, 0, 0)), ShouldBeEmpty)
		})

		Convey("When the motion runs to the end of the buffer", func() {
			got := seg.Detect(signal(0.1, 0.9, 0.9, 1.0, 2.0, 1.0, 0.9, 0.9))

			Convey("Then the boundaries clamp to the buffer", func() {
				So(got, ShouldHaveLength, 1)
				So(got[0].StartIndex, ShouldEqual, 0)
				So(got[0].EndIndex, ShouldEqual, 6)
			})
		})

		Convey("When two swings follow each other", func() {
			got := seg.Detect(signal(0.1, 0, 0.1, 0.6, 0.9, 0.6, 0.1, 0, 0.1, 0.3, 0.8, 0.3, 0.1, 0))

			Convey("Then both are found in order", func() {
				So(got, ShouldHaveLength, 2)
				So(got[0].PeakIndex, ShouldEqual, 3)
				So(got[1].PeakIndex, ShouldEqual, 9)
				So(got[1].RawConfidence, ShouldAlmostEqual, 0.8, 1e-9)
			})
		})
	})

	Convey("Given a custom normalization", t, func() {
		seg := segment.New(segment.WithNormalization(4), segment.WithMinPeakSpeed(0.05))
		got := seg.Detect(signal(0.1, 0, 0, 0.1, 0.4, 1.2, 0.5, 0.2, 0, 0))

		Convey("Then raw confidence scales with the peak", func() {
			So(got, ShouldHaveLength, 1)
			So(got[0].RawConfidence, ShouldAlmostEqual, 0.3, 1e-9)
		})
	})
}
