// Package synth generates deterministic synthetic pose sessions with scripted
// strokes, and drives a running analysis service with them.
package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/okian/volley/internal/domain/model"
)

// ErrUnsupportedStroke is returned for stroke types the generator cannot draw.
var ErrUnsupportedStroke = errors.New("synth: unsupported stroke type")

// Generator defaults.
const (
	DefaultFPS        = 30.0
	DefaultVisibility = 0.9

	swingScale    = 0.05 // seconds, logistic scale of the swing itself
	prepLead      = 1.0  // seconds before contact the backswing is centered
	prepScale     = 0.25
	recoveryDelay = 1.3
	recoveryScale = 0.4
	ballWindow    = 0.5
	ballDrift     = 0.3 // cross-court lateral ball travel over the window
)

// Body layout of a right-handed player facing the camera.
var (
	leftShoulder  = model.Point{X: 0.45, Y: 0.40}
	rightShoulder = model.Point{X: 0.55, Y: 0.40}
	leftHip       = model.Point{X: 0.47, Y: 0.62}
	rightHip      = model.Point{X: 0.53, Y: 0.62}
	leftRest      = model.Point{X: 0.42, Y: 0.55}
	rightRest     = model.Point{X: 0.58, Y: 0.55}
	nose          = model.Point{X: 0.50, Y: 0.30}
)

// Stroke is one scripted swing. At is the contact time in seconds; it is
// snapped to the middle of a frame interval.
type Stroke struct {
	Type      model.StrokeType
	At        float64
	Outcome   model.Outcome
	Direction model.ShotDirection
}

// Options configure a generated session.
type Options struct {
	FPS        float64
	Duration   float64 // seconds; 0 means two seconds past the last stroke
	Visibility float64
	LeftHanded bool
	DropEvery  int     // every n-th frame carries no body when > 0
	Noise      float64 // std dev of positional jitter
	Seed       uint64
	Type       model.SessionType
}

func (o Options) withDefaults(script []Stroke) Options {
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if o.Visibility <= 0 {
		o.Visibility = DefaultVisibility
	}
	if o.Type == "" {
		o.Type = model.SessionMatch
	}
	if o.Duration <= 0 {
		for _, s := range script {
			o.Duration = math.Max(o.Duration, s.At+2)
		}
		if o.Duration == 0 {
			o.Duration = 2
		}
	}
	return o
}

// swing is the key poses of one stroke for the dominant and off wrists.
type swing struct {
	domFrom, domTo model.Point
	offFrom, offTo model.Point
}

func swingFor(t model.StrokeType) (swing, error) {
	switch t {
	case model.Forehand:
		return swing{
			domFrom: model.Point{X: 0.35, Y: 0.55}, domTo: model.Point{X: 0.85, Y: 0.50},
			offFrom: leftRest, offTo: leftRest,
		}, nil
	case model.Backhand:
		return swing{
			domFrom: model.Point{X: 0.75, Y: 0.55}, domTo: model.Point{X: 0.15, Y: 0.50},
			offFrom: model.Point{X: 0.62, Y: 0.55}, offTo: model.Point{X: 0.62, Y: 0.55},
		}, nil
	case model.Serve:
		return swing{
			domFrom: rightRest, domTo: model.Point{X: 0.60, Y: 0.02},
			offFrom: leftRest, offTo: model.Point{X: 0.45, Y: 0.08},
		}, nil
	default:
		return swing{}, fmt.Errorf("%w: %q", ErrUnsupportedStroke, t)
	}
}

// motionTerm is one logistic displacement of a wrist.
type motionTerm struct {
	center, scale float64
	delta         model.Point
}

func (m motionTerm) at(t float64) model.Point {
	v := logistic((t - m.center) / m.scale)
	return model.Point{X: m.delta.X * v, Y: m.delta.Y * v}
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func sub(a, b model.Point) model.Point {
	return model.Point{X: a.X - b.X, Y: a.Y - b.Y}
}

// ContactTime returns the snapped contact time of a stroke at fps.
func ContactTime(at, fps float64) float64 {
	m := math.Round(at * fps)
	return (m + 0.5) / fps
}

// Generate draws a session from a stroke script. Strokes should be at least
// three seconds apart so their recoveries settle.
func Generate(id string, opts Options, script []Stroke) (*model.Session, error) {
	opts = opts.withDefaults(script)

	var dom, off []motionTerm
	var marks []model.OutcomeMark
	var ball []model.BallSample
	for _, s := range script {
		sw, err := swingFor(s.Type)
		if err != nil {
			return nil, err
		}
		tc := ContactTime(s.At, opts.FPS)
		dom = append(dom, terms(tc, rightRest, sw.domFrom, sw.domTo)...)
		off = append(off, terms(tc, leftRest, sw.offFrom, sw.offTo)...)
		if s.Outcome != model.OutcomeNone {
			marks = append(marks, model.OutcomeMark{AtSec: tc, Outcome: s.Outcome})
		}
		ball = append(ball, ballTrack(tc, opts.FPS, s.Direction)...)
	}

	var rng *rand.Rand
	if opts.Noise > 0 {
		rng = rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	}

	n := int(opts.Duration*opts.FPS) + 1
	frames := make([]model.PoseFrame, n)
	for i := range frames {
		ts := float64(i) / opts.FPS
		frames[i] = model.PoseFrame{FrameIndex: i, Timestamp: ts, HasTimestamp: true}
		if opts.DropEvery > 0 && i%opts.DropEvery == opts.DropEvery-1 {
			continue
		}
		rw := displace(rightRest, dom, ts)
		lw := displace(leftRest, off, ts)
		frames[i].Keypoints = body(lw, rw, opts, rng)
	}

	return &model.Session{
		ID:          id,
		FPS:         opts.FPS,
		Type:        opts.Type,
		Frames:      frames,
		Ball:        ball,
		Outcomes:    marks,
		SubmittedAt: time.Now().UTC(),
	}, nil
}

// terms returns backswing, swing and recovery for one wrist.
func terms(tc float64, rest, from, to model.Point) []motionTerm {
	out := make([]motionTerm, 0, 3)
	if from != rest {
		out = append(out, motionTerm{center: tc - prepLead, scale: prepScale, delta: sub(from, rest)})
	}
	return append(out,
		motionTerm{center: tc, scale: swingScale, delta: sub(to, from)},
		motionTerm{center: tc + recoveryDelay, scale: recoveryScale, delta: sub(rest, to)},
	)
}

func displace(rest model.Point, ts []motionTerm, t float64) model.Point {
	p := rest
	for _, m := range ts {
		d := m.at(t)
		p.X += d.X
		p.Y += d.Y
	}
	return p
}

func ballTrack(tc, fps float64, d model.ShotDirection) []model.BallSample {
	if d == model.DirectionUnknown {
		return nil
	}
	drift := 0.0
	if d == model.DirectionCrossCourt {
		drift = ballDrift
	}
	steps := int(ballWindow * fps)
	out := make([]model.BallSample, 0, steps+1)
	for k := 0; k <= steps; k++ {
		f := float64(k) / float64(steps)
		out = append(out, model.BallSample{
			Timestamp: tc + f*ballWindow,
			X:         0.6 + drift*f,
			Y:         0.5 - 0.3*f,
		})
	}
	return out
}

// left/right landmark pairs swapped when mirroring a left-handed player
var mirrorPairs = [][2]int{
	{1, 4}, {2, 5}, {3, 6}, {7, 8}, {9, 10},
	{model.LeftShoulder, model.RightShoulder},
	{model.LeftElbow, model.RightElbow},
	{model.LeftWrist, model.RightWrist},
	{17, 18}, {19, 20}, {21, 22},
	{model.LeftHip, model.RightHip},
	{model.LeftKnee, model.RightKnee},
	{model.LeftAnkle, model.RightAnkle},
	{29, 30}, {31, 32},
}

// body lays out a full 33-point pose for the given wrist positions.
func body(lw, rw model.Point, opts Options, rng *rand.Rand) []model.Landmark {
	pts := make([]model.Point, model.LandmarkCount)
	for i := 0; i <= 10; i++ {
		pts[i] = nose
	}
	pts[model.LeftShoulder], pts[model.RightShoulder] = leftShoulder, rightShoulder
	pts[model.LeftElbow] = mid(leftShoulder, lw)
	pts[model.RightElbow] = mid(rightShoulder, rw)
	pts[model.LeftWrist], pts[model.RightWrist] = lw, rw
	for _, i := range []int{17, 19, 21} {
		pts[i] = lw
	}
	for _, i := range []int{18, 20, 22} {
		pts[i] = rw
	}
	pts[model.LeftHip], pts[model.RightHip] = leftHip, rightHip
	pts[model.LeftKnee] = model.Point{X: 0.47, Y: 0.75}
	pts[model.RightKnee] = model.Point{X: 0.53, Y: 0.75}
	pts[model.LeftAnkle] = model.Point{X: 0.47, Y: 0.88}
	pts[model.RightAnkle] = model.Point{X: 0.53, Y: 0.88}
	pts[29], pts[31] = pts[model.LeftAnkle], pts[model.LeftAnkle]
	pts[30], pts[32] = pts[model.RightAnkle], pts[model.RightAnkle]

	if opts.LeftHanded {
		for i := range pts {
			pts[i].X = 1 - pts[i].X
		}
		for _, p := range mirrorPairs {
			pts[p[0]], pts[p[1]] = pts[p[1]], pts[p[0]]
		}
	}

	out := make([]model.Landmark, len(pts))
	for i, p := range pts {
		if rng != nil {
			p.X += rng.NormFloat64() * opts.Noise
			p.Y += rng.NormFloat64() * opts.Noise
		}
		out[i] = model.Landmark{X: p.X, Y: p.Y, Visibility: opts.Visibility}
	}
	return out
}

func mid(a, b model.Point) model.Point {
	return model.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
