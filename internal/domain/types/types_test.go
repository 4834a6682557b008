package types_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/creasty/defaults"
	"github.com/okian/volley/internal/domain/analytics"
	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/pipeline"
	"github.com/okian/volley/internal/domain/rally"
	"github.com/okian/volley/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestToSession(t *testing.T) {
	Convey("Given a session request with mixed frame identities", t, func() {
		seven, late := 7, 300
		ts, zero := 1.25, 0.0
		req := types.SessionRequest{
			SessionID: "s-1",
			FPS:       30,
			Frames: []types.FrameRequest{
				{Frame: &seven},
				{Name: "clip/frame_0012.jpg"},
				{Name: "poster.jpg", Timestamp: &ts},
				{Frame: &late, Timestamp: &zero},
			},
			Outcomes: []types.OutcomeRequest{{AtSec: 0.5, Outcome: "winner"}},
		}
		So(defaults.Set(&req), ShouldBeNil)
		now := time.Unix(1700000000, 0).UTC()
		s := req.ToSession(now)

		Convey("Then frame numbers come from the field, the name or the position", func() {
			So(s.Frames[0].FrameIndex, ShouldEqual, 7)
			So(s.Frames[1].FrameIndex, ShouldEqual, 12)
			So(s.Frames[2].FrameIndex, ShouldEqual, 2)
		})

		Convey("Then only explicit timestamps are set", func() {
			So(s.Frames[0].Timestamp, ShouldEqual, 0)
			So(s.Frames[0].HasTimestamp, ShouldBeFalse)
			So(s.Frames[2].Timestamp, ShouldEqual, 1.25)
			So(s.Frames[2].HasTimestamp, ShouldBeTrue)
		})

		Convey("Then a zero timestamp disagreeing with the frame number is kept", func() {
			So(s.Frames[3].FrameIndex, ShouldEqual, 300)
			So(s.Frames[3].Timestamp, ShouldEqual, 0)
			So(s.Frames[3].HasTimestamp, ShouldBeTrue)
		})

		Convey("Then defaults and annotations are carried over", func() {
			So(s.ID, ShouldEqual, "s-1")
			So(s.Type, ShouldEqual, model.SessionMatch)
			So(s.View, ShouldEqual, model.ViewBack)
			So(s.SubmittedAt, ShouldEqual, now)
			So(s.Outcomes, ShouldResemble, []model.OutcomeMark{{AtSec: 0.5, Outcome: model.OutcomeWinner}})
		})

		Convey("Then a round trip through FromSession keeps frames", func() {
			back := types.FromSession(s).ToSession(now)
			So(back.Frames[1].FrameIndex, ShouldEqual, 12)
			So(back.Frames[2].Timestamp, ShouldEqual, 1.25)
			So(back.Frames[0].HasTimestamp, ShouldBeFalse)
			So(back.Frames[3].HasTimestamp, ShouldBeTrue)
			So(back.View, ShouldEqual, model.ViewBack)
		})
	})
}

func TestFromResult(t *testing.T) {
	Convey("Given a pipeline result with a refined stroke", t, func() {
		origin := model.StrokeEvent{ID: 1, Type: model.Forehand, Confidence: 0.6}
		serve := origin
		serve.Type, serve.Confidence, serve.Origin = model.Serve, 0.8, &origin
		tl := []model.StrokeEvent{serve}

		report, err := analytics.NewEngine(analytics.WithAggregator(rally.NewAggregator())).
			Run(t.Context(), tl)
		So(err, ShouldBeNil)

		out := types.FromResult(&pipeline.Result{
			SessionID: "s-2",
			FPS:       25,
			Timeline:  tl,
			Analytics: report,
			Elapsed:   1500 * time.Microsecond,
		})

		Convey("Then the timeline entry records the refinement", func() {
			So(out.Timeline, ShouldHaveLength, 1)
			So(out.Timeline[0].Stroke, ShouldEqual, "serve")
			So(out.Timeline[0].Refined, ShouldBeTrue)
			So(out.Timeline[0].Original, ShouldEqual, "forehand")
			So(out.ElapsedMS, ShouldEqual, 1.5)
		})

		Convey("Then the session block has the momentum chart", func() {
			So(out.Session.TotalRallies, ShouldEqual, 1)
			So(out.Session.MomentumChart, ShouldHaveLength, 1)
			So(out.Rallies[0].StrokeIDs, ShouldResemble, []int{1})
			So(out.Summary.StrokeCounts["serve"], ShouldEqual, 1)
		})

		Convey("Then serve placement, technique and the IQ are carried", func() {
			So(out.Serves.Placement.Distribution["Unknown"], ShouldEqual, 1)
			So(out.Serves.Placement.Serves, ShouldResemble, []types.ServeLanding{{StrokeID: 1, Zone: "Unknown"}})
			So(out.Technique.View, ShouldEqual, "back")
			So(out.Technique.Strokes, ShouldHaveLength, 1)
			So(out.Technique.Strokes[0].Feedback, ShouldResemble, []string{analytics.FeedbackNoFrame})
			So(out.IQ.Total, ShouldEqual, report.IQ.Total)
			So(out.IQ.Level, ShouldNotBeEmpty)
		})

		Convey("Then it marshals with the documented keys", func() {
			raw, err := json.Marshal(out)
			So(err, ShouldBeNil)
			var m map[string]any
			So(json.Unmarshal(raw, &m), ShouldBeNil)
			session := m["session"].(map[string]any)
			for _, k := range []string{"total_rallies", "average_length", "longest_rally", "average_pressure", "high_pressure_rallies", "momentum_chart"} {
				So(session, ShouldContainKey, k)
			}
			for _, k := range []string{"technique", "tennis_iq", "serves"} {
				So(m, ShouldContainKey, k)
			}
			serves := m["serves"].(map[string]any)
			for _, k := range []string{"rhythm", "placement", "toss", "insights"} {
				So(serves, ShouldContainKey, k)
			}
			entry := m["timeline"].([]any)[0].(map[string]any)
			for _, k := range []string{"id", "stroke", "start_sec", "end_sec", "duration", "confidence"} {
				So(entry, ShouldContainKey, k)
			}
		})
	})

	Convey("Given a degenerate result", t, func() {
		out := types.FromResult(&pipeline.Result{Reason: errors.New("no analyzable motion")})

		Convey("Then the reason is reported and lists are empty, not null", func() {
			So(out.Reason, ShouldEqual, "no analyzable motion")
			So(out.Timeline, ShouldNotBeNil)
			So(out.Rallies, ShouldNotBeNil)
		})
	})
}
