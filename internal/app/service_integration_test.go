package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	service "github.com/okian/volley/internal/app"
	"github.com/okian/volley/internal/config"
	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
)

var rallyScript = []synth.Stroke{
	{Type: model.Serve, At: 1},
	{Type: model.Forehand, At: 4},
	{Type: model.Backhand, At: 7, Outcome: model.OutcomeError},
	{Type: model.Serve, At: 14},
	{Type: model.Backhand, At: 17, Outcome: model.OutcomeWinner},
}

func timelineTypes(tl []model.StrokeEvent) []model.StrokeType {
	out := make([]model.StrokeType, len(tl))
	for i, e := range tl {
		out[i] = e.Type
	}
	return out
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service running the real engine", t, func() {
		cfg := config.New()
		cfg.WorkerCount = 2
		cfg.QueueSize = 16
		svc := service.New(service.WithConfig(cfg))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		Convey("When a session is analyzed synchronously", func() {
			s, err := synth.Generate("sync-1", synth.Options{Duration: 20}, rallyScript)
			So(err, ShouldBeNil)
			res, err := svc.Analyze(ctx, s)

			Convey("Then the strokes are labelled and grouped into rallies", func() {
				So(err, ShouldBeNil)
				if diff := cmp.Diff(synth.Expected(rallyScript), timelineTypes(res.Timeline)); diff != "" {
					t.Errorf("stroke types mismatch (-want +got):\n%s", diff)
				}
				So(res.Analytics.Rally.Rallies, ShouldHaveLength, 2)
			})
		})

		Convey("When several sessions are submitted", func() {
			ids := make([]string, 3)
			for i := range ids {
				ids[i] = fmt.Sprintf("async-%d", i)
				s, err := synth.Generate(ids[i], synth.Options{Duration: 20, Seed: uint64(i)}, rallyScript)
				So(err, ShouldBeNil)
				ack, err := svc.Submit(ctx, s)
				So(err, ShouldBeNil)
				So(ack.Duplicate, ShouldBeFalse)
			}

			Convey("Then each completes with its timeline", func() {
				for _, id := range ids {
					So(waitStatus(ctx, svc, id, model.StatusCompleted), ShouldBeTrue)
					st, err := svc.Session(ctx, id)
					So(err, ShouldBeNil)
					So(st.Result, ShouldNotBeNil)
					So(st.Result.Timeline, ShouldHaveLength, len(rallyScript))
					So(st.Result.Rallies, ShouldHaveLength, 2)
				}
				So(svc.GetStats()["totalSessions"], ShouldEqual, 3)
			})
		})

		Convey("When a session without a body is submitted", func() {
			s, err := synth.Generate("empty", synth.Options{Duration: 5, DropEvery: 1}, nil)
			So(err, ShouldBeNil)
			_, err = svc.Submit(ctx, s)
			So(err, ShouldBeNil)

			Convey("Then it completes with an empty timeline and a reason", func() {
				So(waitStatus(ctx, svc, "empty", model.StatusCompleted), ShouldBeTrue)
				st, _ := svc.Session(ctx, "empty")
				So(st.Result.Timeline, ShouldBeEmpty)
				So(st.Result.Reason, ShouldNotBeEmpty)
			})
		})
	})
}
