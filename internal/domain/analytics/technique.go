package analytics

import (
	"math"
	"sort"

	"github.com/okian/volley/internal/domain/model"
)

// Technique thresholds on the peak-frame body geometry.
const (
	maxShoulderTilt      = 15.0 // |Δy| of the shoulders, in hundredths of the frame
	elbowBand            = 0.1
	lowElbow             = -0.05
	balanceLoose         = 0.05
	balanceOff           = 0.1
	compactForehand      = 1.5
	postureFeedbackBelow = 6
	balanceFeedbackBelow = 7
	topFeedbackCount     = 3
)

// Per-stroke feedback messages.
const (
	FeedbackPosture     = "Work on maintaining better posture during the stroke"
	FeedbackElbow       = "Try to keep your elbow higher during the stroke"
	FeedbackBalance     = "Focus on staying balanced and centered"
	FeedbackCompact     = "Try to keep your forehand more compact"
	FeedbackGood        = "Good technique! Keep practicing to maintain consistency"
	FeedbackNoFrame     = "Could not analyze this stroke"
	FeedbackNoLandmarks = "Could not analyze technique for this stroke"
)

// StrokeTechnique is the body geometry of one stroke at its peak frame. Side
// views fill the posture fields, back views the balance fields.
type StrokeTechnique struct {
	StrokeID int
	Type     model.StrokeType
	View     model.CameraView
	Analyzed bool

	ShoulderRotation float64
	ElbowHeight      float64 // shoulder y minus elbow y; positive when the elbows are raised
	HipRotation      float64
	PostureScore     int     // 1..10

	StrokeWidth     float64 // wrist separation over shoulder width
	BalanceOffset   float64
	WristSeparation float64
	BalanceScore    int     // 1..10

	Feedback []string
}

// TechniqueReport collects per-stroke technique and the most common advice.
type TechniqueReport struct {
	View        model.CameraView
	Strokes     []StrokeTechnique
	Breakdown   map[model.StrokeType]int
	TopFeedback []string
}

// AnalyzeTechnique reads the frame nearest each stroke's peak inside the
// stroke interval. An empty view is treated as a back view.
func AnalyzeTechnique(timeline []model.StrokeEvent, frames []model.PoseFrame, view model.CameraView) TechniqueReport {
	if view != model.ViewSide {
		view = model.ViewBack
	}
	r := TechniqueReport{
		View:      view,
		Strokes:   make([]StrokeTechnique, 0, len(timeline)),
		Breakdown: make(map[model.StrokeType]int),
	}
	for _, e := range timeline {
		r.Breakdown[e.Type]++
		r.Strokes = append(r.Strokes, strokeTechnique(e, frames, view))
	}
	r.TopFeedback = topFeedback(r.Strokes)
	return r
}

func strokeTechnique(e model.StrokeEvent, frames []model.PoseFrame, view model.CameraView) StrokeTechnique {
	t := StrokeTechnique{StrokeID: e.ID, Type: e.Type, View: view}
	f, ok := peakFrame(e, frames)
	if !ok {
		t.Feedback = []string{FeedbackNoFrame}
		return t
	}
	pts, ok := techniquePoints(f)
	if !ok {
		t.Feedback = []string{FeedbackNoLandmarks}
		return t
	}

	t.Analyzed = true
	if view == model.ViewSide {
		t.ShoulderRotation = math.Abs(pts.ls.Y-pts.rs.Y) * 100
		t.ElbowHeight = (pts.ls.Y+pts.rs.Y)/2 - (pts.le.Y+pts.re.Y)/2
		t.HipRotation = math.Abs(pts.lh.Y-pts.rh.Y) * 100
		t.PostureScore = postureScore(t.ShoulderRotation, t.ElbowHeight)
		if t.PostureScore < postureFeedbackBelow {
			t.Feedback = append(t.Feedback, FeedbackPosture)
		}
		if t.ElbowHeight < lowElbow {
			t.Feedback = append(t.Feedback, FeedbackElbow)
		}
	} else {
		t.WristSeparation = math.Abs(pts.lw.X - pts.rw.X)
		if sw := math.Abs(pts.ls.X - pts.rs.X); sw > 0 {
			t.StrokeWidth = t.WristSeparation / sw
		}
		t.BalanceOffset = math.Abs((pts.lw.X+pts.rw.X)/2 - (pts.ls.X+pts.rs.X)/2)
		t.BalanceScore = balanceScore(t.BalanceOffset)
		if t.BalanceScore < balanceFeedbackBelow {
			t.Feedback = append(t.Feedback, FeedbackBalance)
		}
		if e.Type == model.Forehand && t.StrokeWidth > compactForehand {
			t.Feedback = append(t.Feedback, FeedbackCompact)
		}
	}
	if len(t.Feedback) == 0 {
		t.Feedback = []string{FeedbackGood}
	}
	return t
}

// peakFrame returns the detected frame inside the stroke closest to its peak.
func peakFrame(e model.StrokeEvent, frames []model.PoseFrame) (model.PoseFrame, bool) {
	best, bestDist := -1, math.Inf(1)
	for i, f := range frames {
		if f.Empty() || f.Timestamp < e.StartSec || f.Timestamp > e.EndSec {
			continue
		}
		if d := math.Abs(f.Timestamp - e.PeakSec); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return model.PoseFrame{}, false
	}
	return frames[best], true
}

type bodyPoints struct {
	ls, rs, le, re, lw, rw, lh, rh model.Point
}

func techniquePoints(f model.PoseFrame) (bodyPoints, bool) {
	idx := [...]int{
		model.LeftShoulder, model.RightShoulder,
		model.LeftElbow, model.RightElbow,
		model.LeftWrist, model.RightWrist,
		model.LeftHip, model.RightHip,
	}
	var p [len(idx)]model.Point
	for i, j := range idx {
		l, ok := f.Landmark(j)
		if !ok {
			return bodyPoints{}, false
		}
		p[i] = l.Point()
	}
	return bodyPoints{ls: p[0], rs: p[1], le: p[2], re: p[3], lw: p[4], rw: p[5], lh: p[6], rh: p[7]}, true
}

func postureScore(shoulderTilt, elbowHeight float64) int {
	score := 10
	if shoulderTilt > maxShoulderTilt {
		score -= 2
	}
	if elbowHeight < -elbowBand || elbowHeight > elbowBand {
		score -= 2
	}
	return max(1, score)
}

func balanceScore(offset float64) int {
	score := 10
	switch {
	case offset > balanceOff:
		score -= 3
	case offset > balanceLoose:
		score--
	}
	return max(1, score)
}

// topFeedback returns the most frequent messages; ties keep first appearance.
func topFeedback(strokes []StrokeTechnique) []string {
	counts := make(map[string]int)
	var order []string
	for _, s := range strokes {
		for _, f := range s.Feedback {
			if counts[f] == 0 {
				order = append(order, f)
			}
			counts[f]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topFeedbackCount {
		order = order[:topFeedbackCount]
	}
	return order
}
