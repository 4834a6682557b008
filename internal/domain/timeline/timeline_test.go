package timeline_test

import (
	"errors"
	"testing"

	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/timeline"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/require"
)

func stroke(t model.StrokeType, start, end float64) model.StrokeEvent {
	return model.StrokeEvent{Type: t, StartSec: start, EndSec: end, Confidence: 0.7}
}

func TestAssemble(t *testing.T) {
	Convey("Given an assembler with default bounds", t, func() {
		a := timeline.NewAssembler()

		Convey("When events arrive out of order with one blip", func() {
			in := []model.StrokeEvent{
				stroke(model.Backhand, 4.0, 4.3),
				stroke(model.Serve, 1.0, 1.4),
				stroke(model.Unknown, 2.0, 2.05),
				stroke(model.Forehand, 2.5, 2.8),
			}
			out := a.Assemble(in)

			Convey("Then the timeline is sorted, filtered and numbered", func() {
				So(out, ShouldHaveLength, 3)
				for i, e := range out {
					So(e.ID, ShouldEqual, i+1)
					So(e.DurationSec, ShouldAlmostEqual, e.EndSec-e.StartSec, 1e-12)
				}
				So(out[0].Type, ShouldEqual, model.Serve)
				So(out[1].Type, ShouldEqual, model.Forehand)
				So(out[2].Type, ShouldEqual, model.Backhand)
				So(in[0].ID, ShouldEqual, 0)
			})
		})

		Convey("When an event is implausibly long", func() {
			out := a.Assemble([]model.StrokeEvent{stroke(model.Forehand, 1, 5)})
			So(out, ShouldBeEmpty)
		})

		Convey("When an event has no extent", func() {
			So(a.Assemble([]model.StrokeEvent{stroke(model.Forehand, 1, 1)}), ShouldBeEmpty)
		})
	})

	Convey("Given an assembler without an upper bound", t, func() {
		a := timeline.NewAssembler(timeline.WithMaxDuration(0), timeline.WithMinDuration(0.2))
		out := a.Assemble([]model.StrokeEvent{stroke(model.Forehand, 1, 5), stroke(model.Volley, 6, 6.15)})

		Convey("Then only the minimum applies", func() {
			So(out, ShouldHaveLength, 1)
			So(out[0].DurationSec, ShouldEqual, 4)
		})
	})
}

func TestFrameToSeconds(t *testing.T) {
	require.Equal(t, 0.0, timeline.FrameToSeconds(0, 30))
	require.Equal(t, 1.0, timeline.FrameToSeconds(30, 30))
	require.Equal(t, 0.03, timeline.FrameToSeconds(1, 30))
	require.Equal(t, 0.0, timeline.FrameToSeconds(10, 0))

	prev := -1.0
	for f := 0; f < 2000; f++ {
		s := timeline.FrameToSeconds(f, 29.97)
		require.GreaterOrEqual(t, s, prev, "frame %d", f)
		require.InDelta(t, float64(f)/29.97, s, 0.005+1e-9)
		prev = s
	}

	for _, f := range []int{0, 1, 15, 299, 1800} {
		require.Equal(t, f, timeline.SecondsToFrame(float64(f)/30, 30))
	}
}

func TestParseFrameNumber(t *testing.T) {
	cases := map[string]int{
		"frame_0001.jpg":        1,
		"frame_0120.png":        120,
		"clips/a1/frame-42.jpg": 42,
		"000317":                317,
	}
	for name, want := range cases {
		got, err := timeline.ParseFrameNumber(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}

	_, err := timeline.ParseFrameNumber("cover.jpg")
	require.True(t, errors.Is(err, timeline.ErrNoFrameNumber))
}
