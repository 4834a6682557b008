package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/volley/internal/domain/classify"
	"github.com/okian/volley/internal/domain/features"
	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/pipeline"
	"github.com/okian/volley/internal/domain/types"
	"github.com/okian/volley/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
)

var matchScript = []synth.Stroke{
	{Type: model.Serve, At: 1},
	{Type: model.Forehand, At: 4},
	{Type: model.Backhand, At: 7},
	{Type: model.Serve, At: 14},
	{Type: model.Forehand, At: 17, Outcome: model.OutcomeWinner},
}

func strokeTypes(tl []model.StrokeEvent) []model.StrokeType {
	out := make([]model.StrokeType, len(tl))
	for i, e := range tl {
		out[i] = e.Type
	}
	return out
}

func generate(t *testing.T, opts synth.Options, script []synth.Stroke) *model.Session {
	t.Helper()
	s, err := synth.Generate("session-1", opts, script)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return s
}

func TestAnalyzeMatch(t *testing.T) {
	Convey("Given a synthetic match session", t, func() {
		session := generate(t, synth.Options{Duration: 20}, matchScript)
		a := pipeline.New()

		Convey("When it is analyzed", func() {
			res, err := a.Analyze(context.Background(), session)
			So(err, ShouldBeNil)
			So(res.Reason, ShouldBeNil)

			Convey("Then every scripted stroke is found and labelled", func() {
				if diff := cmp.Diff(synth.Expected(matchScript), strokeTypes(res.Timeline)); diff != "" {
					t.Errorf("stroke types mismatch (-want +got):\n%s", diff)
				}
			})

			Convey("Then the timeline is ordered, bounded and numbered", func() {
				for i, e := range res.Timeline {
					So(e.ID, ShouldEqual, i+1)
					So(e.Confidence, ShouldBeBetweenOrEqual, 0, 1)
					So(e.DurationSec, ShouldBeBetweenOrEqual, 0.1, 3.0)
					So(e.StartSec, ShouldBeLessThanOrEqualTo, e.PeakSec)
					So(e.PeakSec, ShouldBeLessThanOrEqualTo, e.EndSec)
					if i > 0 {
						So(e.StartSec, ShouldBeGreaterThan, res.Timeline[i-1].EndSec)
					}
				}
			})

			Convey("Then each stroke is centered on its scripted contact", func() {
				for i, s := range matchScript {
					tc := synth.ContactTime(s.At, synth.DefaultFPS)
					So(res.Timeline[i].PeakSec, ShouldAlmostEqual, tc, 0.05)
				}
			})

			Convey("Then the strokes group into two rallies", func() {
				rallies := res.Analytics.Rally.Rallies
				So(rallies, ShouldHaveLength, 2)
				So(rallies[0].Len(), ShouldEqual, 3)
				So(rallies[1].Winner, ShouldEqual, model.WinnerPlayer)
				So(res.Analytics.Rally.Momentum[1].Momentum, ShouldBeGreaterThan, 0)
			})

			Convey("Then the summary counts add up", func() {
				sum := 0
				for _, n := range res.Analytics.Summary.Counts {
					sum += n
				}
				So(sum, ShouldEqual, len(res.Timeline))
				So(res.FramesTotal, ShouldEqual, len(session.Frames))
				So(res.FramesUsable, ShouldEqual, len(session.Frames))
			})

			Convey("Then the input session is left untouched", func() {
				again := generate(t, synth.Options{Duration: 20}, matchScript)
				So(session.Frames, ShouldResemble, again.Frames)
			})
		})

		Convey("When it is analyzed twice", func() {
			first, err := a.Analyze(context.Background(), session)
			So(err, ShouldBeNil)
			second, err := a.Analyze(context.Background(), session)
			So(err, ShouldBeNil)

			Convey("Then the timelines are identical", func() {
				So(second.Timeline, ShouldResemble, first.Timeline)
			})
		})

		Convey("When the frames arrive shuffled", func() {
			shuffled := *session
			shuffled.Frames = append([]model.PoseFrame(nil), session.Frames...)
			for i, j := 0, len(shuffled.Frames)-1; i < j; i, j = i+1, j-1 {
				shuffled.Frames[i], shuffled.Frames[j] = shuffled.Frames[j], shuffled.Frames[i]
			}
			ordered, err := a.Analyze(context.Background(), session)
			So(err, ShouldBeNil)
			got, err := a.Analyze(context.Background(), &shuffled)
			So(err, ShouldBeNil)

			Convey("Then frame order is restored before motion is computed", func() {
				So(strokeTypes(got.Timeline), ShouldResemble, strokeTypes(ordered.Timeline))
			})
		})

		Convey("When frame numbers are offset from the supplied timestamps", func() {
			shifted := *session
			shifted.Frames = append([]model.PoseFrame(nil), session.Frames...)
			for i := range shifted.Frames {
				shifted.Frames[i].FrameIndex += 300
			}
			base, err := a.Analyze(context.Background(), session)
			So(err, ShouldBeNil)
			got, err := a.Analyze(context.Background(), &shifted)
			So(err, ShouldBeNil)

			Convey("Then the timestamps are kept, the zero one included", func() {
				So(shifted.Frames[0].Timestamp, ShouldEqual, 0)
				So(strokeTypes(got.Timeline), ShouldResemble, synth.Expected(matchScript))
				for i := range got.Timeline {
					So(got.Timeline[i].PeakSec, ShouldEqual, base.Timeline[i].PeakSec)
				}
			})

			Convey("Then the wire round trip keeps them too", func() {
				wire := types.FromSession(&shifted).ToSession(time.Now())
				So(wire.Frames[0].HasTimestamp, ShouldBeTrue)
				res, err := a.Analyze(context.Background(), wire)
				So(err, ShouldBeNil)
				So(strokeTypes(res.Timeline), ShouldResemble, synth.Expected(matchScript))
				So(res.Timeline[0].PeakSec, ShouldEqual, base.Timeline[0].PeakSec)
			})
		})

		Convey("When frames carry only their numbers", func() {
			derived := *session
			derived.Frames = append([]model.PoseFrame(nil), session.Frames...)
			for i := range derived.Frames {
				derived.Frames[i].Timestamp, derived.Frames[i].HasTimestamp = 0, false
			}
			got, err := a.Analyze(context.Background(), &derived)
			So(err, ShouldBeNil)

			Convey("Then times are derived from frame and rate", func() {
				So(strokeTypes(got.Timeline), ShouldResemble, synth.Expected(matchScript))
			})
		})
	})
}

func TestAnalyzeServes(t *testing.T) {
	Convey("Given ten serves, a five second pause and three forehands", t, func() {
		script := synth.ServeScript(10, synth.StrokeSpacing)
		last := script[len(script)-1].At
		for i := 0; i < 3; i++ {
			// contact must clear the last serve's end by five seconds
			script = append(script, synth.Stroke{Type: model.Forehand, At: last + 5.5 + float64(i)*synth.StrokeSpacing})
		}
		session := generate(t, synth.Options{}, script)

		res, err := pipeline.New().Analyze(context.Background(), session)
		So(err, ShouldBeNil)

		Convey("Then all strokes are detected", func() {
			So(strokeTypes(res.Timeline), ShouldResemble, synth.Expected(script))
		})

		Convey("Then exactly two rallies form, the first opening on the first serve", func() {
			rallies := res.Analytics.Rally.Rallies
			So(rallies, ShouldHaveLength, 2)
			So(rallies[0].Len(), ShouldEqual, 10)
			So(rallies[0].StartSec, ShouldEqual, res.Timeline[0].StartSec)
			So(rallies[1].Len(), ShouldEqual, 3)
		})

		Convey("Then serve statistics cover every serve", func() {
			So(res.Analytics.Serves.Count, ShouldEqual, 10)
		})
	})
}

func TestAnalyzeLeftHanded(t *testing.T) {
	Convey("Given a left-handed player's session", t, func() {
		script := []synth.Stroke{{Type: model.Forehand, At: 2}, {Type: model.Backhand, At: 5}}
		session := generate(t, synth.Options{LeftHanded: true}, script)

		Convey("When the dominant side is configured as left", func() {
			a := pipeline.New(
				pipeline.WithExtractor(features.NewExtractor(features.WithDominantSide(features.Left))),
				pipeline.WithClassifier(classify.NewGeometry(classify.WithDominantSide(features.Left))),
			)
			res, err := a.Analyze(context.Background(), session)
			So(err, ShouldBeNil)

			Convey("Then forehand and backhand keep their meaning", func() {
				So(strokeTypes(res.Timeline), ShouldResemble, []model.StrokeType{model.Forehand, model.Backhand})
			})
		})
	})
}

func TestAnalyzeDegenerate(t *testing.T) {
	Convey("Given input that carries no analyzable motion", t, func() {
		a := pipeline.New()

		Convey("When no frame has a body", func() {
			frames := make([]model.PoseFrame, 60)
			for i := range frames {
				frames[i].FrameIndex = i
			}
			res, err := a.Analyze(context.Background(), &model.Session{ID: "empty", FPS: 30, Frames: frames})

			Convey("Then the result is empty with a reason", func() {
				So(err, ShouldBeNil)
				So(errors.Is(res.Reason, pipeline.ErrNoBody), ShouldBeTrue)
				So(res.Timeline, ShouldBeEmpty)
				So(res.Analytics.Summary.Total, ShouldEqual, 0)
				So(res.Analytics.Rally.Rallies, ShouldBeEmpty)
			})
		})

		Convey("When there are fewer frames than a peak needs", func() {
			session := generate(t, synth.Options{Duration: 0.1}, nil)
			res, err := a.Analyze(context.Background(), session)

			Convey("Then insufficiency is reported, not failed", func() {
				So(err, ShouldBeNil)
				So(errors.Is(res.Reason, pipeline.ErrInsufficientFrames), ShouldBeTrue)
				So(res.Timeline, ShouldBeEmpty)
			})
		})

		Convey("When the player stands still", func() {
			session := generate(t, synth.Options{Duration: 5}, nil)
			res, err := a.Analyze(context.Background(), session)

			Convey("Then no stroke is reported and no reason is needed", func() {
				So(err, ShouldBeNil)
				So(res.Reason, ShouldBeNil)
				So(res.Timeline, ShouldBeEmpty)
			})
		})

		Convey("When the visibility is below the threshold", func() {
			session := generate(t, synth.Options{Visibility: 0.2}, matchScript[:2])
			res, err := a.Analyze(context.Background(), session)

			Convey("Then nothing is usable", func() {
				So(err, ShouldBeNil)
				So(res.FramesUsable, ShouldEqual, 0)
				So(errors.Is(res.Reason, pipeline.ErrInsufficientFrames), ShouldBeTrue)
			})
		})
	})
}

func TestAnalyzeInvalid(t *testing.T) {
	Convey("Given an analyzer", t, func() {
		a := pipeline.New()

		Convey("When the session is nil", func() {
			_, err := a.Analyze(context.Background(), nil)
			So(err, ShouldEqual, pipeline.ErrNilSession)
		})

		Convey("When the frame rate is not positive", func() {
			_, err := a.Analyze(context.Background(), &model.Session{FPS: 0})
			So(errors.Is(err, pipeline.ErrInvalidFPS), ShouldBeTrue)
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := a.Analyze(ctx, generate(t, synth.Options{}, matchScript[:1]))
			So(err, ShouldEqual, context.Canceled)
			So(res, ShouldBeNil)
		})
	})
}

func TestAnalyzeDroppedFrames(t *testing.T) {
	Convey("Given a session with periodic detection failures", t, func() {
		// drops land at least seven frames away from every contact
		script := []synth.Stroke{
			{Type: model.Serve, At: 1},
			{Type: model.Forehand, At: 5},
			{Type: model.Backhand, At: 9},
		}
		session := generate(t, synth.Options{DropEvery: 20}, script)
		res, err := pipeline.New().Analyze(context.Background(), session)

		Convey("Then the gaps are skipped and strokes are still found", func() {
			So(err, ShouldBeNil)
			So(res.FramesUsable, ShouldBeLessThan, res.FramesTotal)
			So(strokeTypes(res.Timeline), ShouldResemble, synth.Expected(script))
		})
	})
}
