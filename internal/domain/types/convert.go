package types

import (
	"time"

	"github.com/okian/volley/internal/domain/analytics"
	"github.com/okian/volley/internal/domain/model"
	"github.com/okian/volley/internal/domain/pipeline"
	"github.com/okian/volley/internal/domain/timeline"
)

// ToSession converts a validated request into a domain session. Only frames
// carrying timestamp_sec are marked HasTimestamp; the pipeline derives the
// others from the frame number.
func (r SessionRequest) ToSession(now time.Time) *model.Session {
	s := &model.Session{
		ID:          r.SessionID,
		FPS:         r.FPS,
		Type:        model.SessionType(r.Type),
		View:        model.CameraView(r.View),
		Frames:      make([]model.PoseFrame, len(r.Frames)),
		Ball:        r.Ball,
		Court:       r.Court,
		SubmittedAt: now,
	}
	for i, f := range r.Frames {
		idx := i
		switch {
		case f.Frame != nil:
			idx = *f.Frame
		case f.Name != "":
			if n, err := timeline.ParseFrameNumber(f.Name); err == nil {
				idx = n
			}
		}
		pf := model.PoseFrame{FrameIndex: idx, Keypoints: f.Keypoints}
		if f.Timestamp != nil {
			pf.Timestamp, pf.HasTimestamp = *f.Timestamp, true
		}
		s.Frames[i] = pf
	}
	for _, o := range r.Outcomes {
		s.Outcomes = append(s.Outcomes, model.OutcomeMark{AtSec: o.AtSec, Outcome: model.Outcome(o.Outcome)})
	}
	return s
}

// FromSession builds a request from a domain session; used by clients that
// generate sessions locally.
func FromSession(s *model.Session) SessionRequest {
	r := SessionRequest{
		SessionID: s.ID,
		FPS:       s.FPS,
		Type:      string(s.Type),
		View:      string(s.View),
		Frames:    make([]FrameRequest, len(s.Frames)),
		Ball:      s.Ball,
		Court:     s.Court,
	}
	for i, f := range s.Frames {
		idx := f.FrameIndex
		r.Frames[i] = FrameRequest{Frame: &idx, Keypoints: f.Keypoints}
		if f.HasTimestamp {
			ts := f.Timestamp
			r.Frames[i].Timestamp = &ts
		}
	}
	for _, o := range s.Outcomes {
		r.Outcomes = append(r.Outcomes, OutcomeRequest{AtSec: o.AtSec, Outcome: string(o.Outcome)})
	}
	return r
}

// FromResult converts a pipeline result to its wire form.
func FromResult(res *pipeline.Result) *AnalysisResponse {
	out := &AnalysisResponse{
		SessionID:    res.SessionID,
		FPS:          res.FPS,
		FramesTotal:  res.FramesTotal,
		FramesUsable: res.FramesUsable,
		Timeline:     make([]TimelineEntry, 0, len(res.Timeline)),
		Rallies:      []RallyEntry{},
		ElapsedMS:    float64(res.Elapsed.Microseconds()) / 1000,
	}
	if res.Reason != nil {
		out.Reason = res.Reason.Error()
	}
	for _, e := range res.Timeline {
		out.Timeline = append(out.Timeline, timelineEntry(e))
	}

	rep := res.Analytics
	if rep == nil {
		return out
	}
	for _, r := range rep.Rally.Rallies {
		ids := make([]int, len(r.Events))
		for i, e := range r.Events {
			ids[i] = e.ID
		}
		out.Rallies = append(out.Rallies, RallyEntry{
			ID:        r.ID,
			StrokeIDs: ids,
			StartSec:  r.StartSec,
			EndSec:    r.EndSec,
			Duration:  r.DurationSec,
			Pressure:  r.Pressure,
			Winner:    string(r.Winner),
		})
	}

	st := rep.Rally.Stats
	out.Session = SessionStats{
		TotalRallies:        st.Total,
		AverageLength:       st.AverageLength,
		MedianLength:        st.MedianLength,
		LongestRally:        st.Longest,
		ShortestRally:       st.Shortest,
		AverageDuration:     st.AverageDuration,
		TotalPlayingTime:    st.TotalPlayingTime,
		AveragePressure:     st.AveragePressure,
		HighPressureRallies: st.HighPressure,
		PressurePerformance: st.PressurePerformance,
		MomentumChart:       make([]MomentumPoint, 0, len(rep.Rally.Momentum)),
	}
	for _, m := range rep.Rally.Momentum {
		out.Session.MomentumChart = append(out.Session.MomentumChart, MomentumPoint{
			Time:     m.Time,
			Momentum: m.Momentum,
			RallyID:  m.RallyID,
			Pressure: m.Pressure,
		})
	}

	sum := rep.Summary
	out.Summary = Summary{
		TotalStrokes:      sum.Total,
		StrokeCounts:      make(map[string]int, len(sum.Counts)),
		AverageConfidence: sum.AverageConfidence,
		Consistency:       sum.Consistency,
		DominantDirection: sum.DominantDirection,
		CourtCoverage:     sum.CourtCoverage,
		Insights:          append([]string{}, sum.Insights...),
	}
	for t, n := range sum.Counts {
		out.Summary.StrokeCounts[string(t)] = n
	}

	out.Heatmap = Heatmap{
		Size:     rep.Heatmap.Size,
		Grid:     rep.Heatmap.Grid,
		Total:    rep.Heatmap.Total,
		Coverage: rep.Heatmap.Coverage,
	}

	sv := rep.Serves
	out.Serves = ServeStats{
		Count:             sv.Count,
		SpeedMean:         sv.SpeedMean,
		SpeedMax:          sv.SpeedMax,
		SpeedMin:          sv.SpeedMin,
		SpeedStd:          sv.SpeedStd,
		DurationMean:      sv.DurationMean,
		First:             ServeGroup{Count: sv.First.Count, AverageSpeed: sv.First.AverageSpeed},
		Second:            ServeGroup{Count: sv.Second.Count, AverageSpeed: sv.Second.AverageSpeed},
		AverageInterval:   sv.AverageInterval,
		RhythmConsistency: sv.RhythmConsistency,
		Rhythm: Rhythm{
			Quick:     sv.Rhythm.Quick,
			Normal:    sv.Rhythm.Normal,
			Slow:      sv.Rhythm.Slow,
			Preferred: sv.Rhythm.Preferred,
		},
		Placement: placement(sv.Placement),
		Toss:      toss(sv.Toss),
		Insights:  append([]string{}, sv.Insights...),
	}

	out.Shots = Shots{
		Distribution: rep.Shots.Distribution,
		MostCommon:   rep.Shots.MostCommon,
		Patterns:     make(map[string]Pattern, len(rep.Shots.Patterns)),
		Insights:     append([]string{}, rep.Shots.Insights...),
	}
	for t, p := range rep.Shots.Patterns {
		out.Shots.Patterns[string(t)] = Pattern{
			Count:               p.Count,
			DirectionPreference: p.DirectionPreference,
			AverageSpeed:        p.AverageSpeed,
		}
	}

	out.Technique = technique(rep.Technique)
	iq := rep.IQ
	out.IQ = TennisIQ{
		Technical:    iq.Components.Technical,
		Tactical:     iq.Components.Tactical,
		Mental:       iq.Components.Mental,
		Physical:     iq.Components.Physical,
		Match:        iq.Components.Match,
		Total:        iq.Total,
		Level:        iq.Level,
		NextLevel:    iq.NextLevel,
		ProPercent:   iq.ProPercent,
		Strengths:    append([]string{}, iq.Strengths...),
		Weaknesses:   append([]string{}, iq.Weaknesses...),
		Improvements: append([]string{}, iq.Improvements...),
	}
	return out
}

func placement(p analytics.Placement) Placement {
	out := Placement{
		Serves:          make([]ServeLanding, 0, len(p.Serves)),
		Distribution:    make(map[string]int, len(p.Counts)),
		Percentages:     make(map[string]float64, len(p.Percent)),
		ZoneConsistency: make(map[string]float64, len(p.ZoneConsistency)),
		Consistency:     p.Consistency,
	}
	for _, s := range p.Serves {
		out.Serves = append(out.Serves, ServeLanding{StrokeID: s.StrokeID, Zone: string(s.Zone), Speed: s.Speed})
	}
	for z, n := range p.Counts {
		out.Distribution[string(z)] = n
	}
	for z, v := range p.Percent {
		out.Percentages[string(z)] = v
	}
	for z, v := range p.ZoneConsistency {
		out.ZoneConsistency[string(z)] = v
	}
	return out
}

func toss(t analytics.TossAnalysis) Toss {
	out := Toss{
		Readings:          make([]TossReading, 0, len(t.Readings)),
		HeightMean:        t.HeightMean,
		HeightStd:         t.HeightStd,
		HeightConsistency: t.HeightConsistency,
		TimingMean:        t.TimingMean,
		TimingStd:         t.TimingStd,
		TimingConsistency: t.TimingConsistency,
		TechniqueScore:    t.TechniqueScore,
		Rating:            t.Rating,
		Recommendations:   append([]string{}, t.Recommendations...),
	}
	for _, r := range t.Readings {
		out.Readings = append(out.Readings, TossReading{
			StrokeID: r.StrokeID,
			ApexSec:  r.ApexSec,
			Height:   r.Height,
			Timing:   r.Timing,
			Score:    r.Score,
		})
	}
	return out
}

func technique(t analytics.TechniqueReport) Technique {
	out := Technique{
		View:        string(t.View),
		Strokes:     make([]StrokeTechnique, 0, len(t.Strokes)),
		Breakdown:   make(map[string]int, len(t.Breakdown)),
		TopFeedback: append([]string{}, t.TopFeedback...),
	}
	for _, s := range t.Strokes {
		out.Strokes = append(out.Strokes, StrokeTechnique{
			StrokeID:         s.StrokeID,
			Stroke:           string(s.Type),
			Analyzed:         s.Analyzed,
			ShoulderRotation: s.ShoulderRotation,
			ElbowHeight:      s.ElbowHeight,
			HipRotation:      s.HipRotation,
			PostureScore:     s.PostureScore,
			StrokeWidth:      s.StrokeWidth,
			BalanceOffset:    s.BalanceOffset,
			WristSeparation:  s.WristSeparation,
			BalanceScore:     s.BalanceScore,
			Feedback:         append([]string{}, s.Feedback...),
		})
	}
	for k, n := range t.Breakdown {
		out.Breakdown[string(k)] = n
	}
	return out
}

func timelineEntry(e model.StrokeEvent) TimelineEntry {
	te := TimelineEntry{
		ID:         e.ID,
		Stroke:     string(e.Type),
		StartSec:   e.StartSec,
		EndSec:     e.EndSec,
		Duration:   e.DurationSec,
		Confidence: e.Confidence,
		Technique:  e.Technique,
		PeakSec:    e.PeakSec,
		PeakSpeed:  e.PeakSpeed,
		Policy:     e.Policy,
		Zone:       string(e.Zone),
		Context:    string(e.Context),
		Direction:  string(e.Direction),
		Outcome:    string(e.Outcome),
	}
	if e.Origin != nil {
		te.Refined = true
		te.Original = string(e.Root().Type)
	}
	return te
}
