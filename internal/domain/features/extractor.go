// Package features derives body-relative geometry from a single pose frame.
package features

import (
	"fmt"
	"math"

	"github.com/okian/volley/internal/domain/model"
)

// Default extractor configuration constants.
const (
	defaultMinVisibility = 0.5
	defaultMinLandmarks  = 6
	defaultAboveMargin   = 0.05
)

var requiredLandmarks = [...]int{
	model.LeftShoulder, model.RightShoulder,
	model.LeftElbow, model.RightElbow,
	model.LeftWrist, model.RightWrist,
	model.LeftHip, model.RightHip,
}

// Extractor computes FeatureVectors. It holds configuration only and is safe
// for concurrent use.
type Extractor struct {
	minVisibility float64
	minLandmarks  int
	aboveMargin   float64
	side          Side
}

// NewExtractor creates an extractor with configuration options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		minVisibility: defaultMinVisibility,
		minLandmarks:  defaultMinLandmarks,
		aboveMargin:   defaultAboveMargin,
		side:          Right,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Side returns the configured dominant side.
func (e *Extractor) Side() Side {
	return e.side
}

// side-resolved view of the visible landmarks of one frame
type arms struct {
	domShoulder, offShoulder model.Landmark
	domElbow, offElbow       model.Landmark
	domWrist, offWrist       model.Landmark
	leftHip, rightHip        model.Landmark

	has map[int]bool
}

// Extract computes the feature vector of frame. When fewer than the minimum
// required landmarks are visible it returns an empty vector wrapped with
// ErrInsufficientLandmarks.
func (e *Extractor) Extract(frame model.PoseFrame) (model.FeatureVector, error) {
	var fv model.FeatureVector

	has := make(map[int]bool, len(requiredLandmarks))
	visible := 0
	for _, idx := range requiredLandmarks {
		if _, ok := frame.Visible(idx, e.minVisibility); ok {
			has[idx] = true
			visible++
		}
	}
	fv.MissingLandmarks = len(requiredLandmarks) - visible
	if visible < e.minLandmarks {
		return model.FeatureVector{MissingLandmarks: fv.MissingLandmarks},
			fmt.Errorf("%w: %d of %d visible in frame %d", ErrInsufficientLandmarks, visible, len(requiredLandmarks), frame.FrameIndex)
	}

	a := e.resolve(frame, has)
	fv.Valid = true

	lShoulder, _ := frame.Landmark(model.LeftShoulder)
	rShoulder, _ := frame.Landmark(model.RightShoulder)
	shouldersOK := has[model.LeftShoulder] && has[model.RightShoulder]
	hipsOK := has[model.LeftHip] && has[model.RightHip]
	wristsOK := has[model.LeftWrist] && has[model.RightWrist]

	var shoulderY, centerX float64
	if shouldersOK {
		fv.ShoulderWidth = math.Abs(rShoulder.X - lShoulder.X)
		shoulderY = (lShoulder.Y + rShoulder.Y) / 2
		centerX = (lShoulder.X + rShoulder.X) / 2
		fv.BodyCenterX = centerX
		fv.ShoulderTilt = math.Abs(lShoulder.Y - rShoulder.Y)
		fv.Features |= model.FeatBodyCenter
		if hipsOK {
			hipY := (a.leftHip.Y + a.rightHip.Y) / 2
			fv.TorsoHeight = math.Max(0, hipY-shoulderY)
		}
	}
	if hipsOK {
		fv.Position = model.Point{
			X: (a.leftHip.X + a.rightHip.X) / 2,
			Y: (a.leftHip.Y + a.rightHip.Y) / 2,
		}
	}

	sign := e.side.Sign()
	if shouldersOK && wristsOK {
		fv.DominantWristRelX = ratio(a.domWrist.X-centerX, fv.ShoulderWidth) * sign
		fv.OffWristRelX = ratio(a.offWrist.X-centerX, fv.ShoulderWidth) * sign
		fv.DominantWristRelY = ratio(a.domWrist.Y-shoulderY, fv.TorsoHeight)
		fv.OffWristRelY = ratio(a.offWrist.Y-shoulderY, fv.TorsoHeight)
		fv.Features |= model.FeatWristPosition

		fv.WristSeparationRaw = math.Abs(a.domWrist.X - a.offWrist.X)
		fv.WristSeparation = ratio(fv.WristSeparationRaw, fv.ShoulderWidth)
		fv.Features |= model.FeatWristSeparation

		fv.DominantWristHeight = shoulderY - a.domWrist.Y
		fv.OffWristHeight = shoulderY - a.offWrist.Y
		fv.WristHeightDiff = shoulderY - (a.domWrist.Y+a.offWrist.Y)/2
		fv.WristsAboveShoulders = fv.WristHeightDiff > e.aboveMargin
		fv.Features |= model.FeatWristHeight
		fv.DominantLead = (a.domWrist.X - a.offWrist.X) * sign
	}

	domSide, offSide := e.sideIndices()
	if a.has[domSide.shoulder] && a.has[domSide.elbow] && a.has[domSide.wrist] &&
		a.has[offSide.shoulder] && a.has[offSide.elbow] && a.has[offSide.wrist] {
		fv.DominantElbowAngle = Angle(a.domShoulder.Point(), a.domElbow.Point(), a.domWrist.Point())
		fv.OffElbowAngle = Angle(a.offShoulder.Point(), a.offElbow.Point(), a.offWrist.Point())
		fv.ElbowAsymmetry = math.Abs(fv.DominantElbowAngle-fv.OffElbowAngle) / 180
		fv.Features |= model.FeatElbowAngles | model.FeatAsymmetry

		fv.DominantExtension = extension(a.domShoulder.Point(), a.domElbow.Point(), a.domWrist.Point())
		fv.OffExtension = extension(a.offShoulder.Point(), a.offElbow.Point(), a.offWrist.Point())
		fv.Features |= model.FeatExtension
	}

	if hipsOK && a.has[domSide.shoulder] && a.has[domSide.elbow] && a.has[offSide.shoulder] && a.has[offSide.elbow] {
		domHip, offHip := a.rightHip, a.leftHip
		if e.side == Left {
			domHip, offHip = a.leftHip, a.rightHip
		}
		fv.DominantShoulderAngle = Angle(domHip.Point(), a.domShoulder.Point(), a.domElbow.Point())
		fv.OffShoulderAngle = Angle(offHip.Point(), a.offShoulder.Point(), a.offElbow.Point())
		fv.Features |= model.FeatShoulderAngles
	}

	return fv, nil
}

type armIndices struct {
	shoulder, elbow, wrist int
}

func (e *Extractor) sideIndices() (dom, off armIndices) {
	right := armIndices{model.RightShoulder, model.RightElbow, model.RightWrist}
	left := armIndices{model.LeftShoulder, model.LeftElbow, model.LeftWrist}
	if e.side == Left {
		return left, right
	}
	return right, left
}

func (e *Extractor) resolve(frame model.PoseFrame, has map[int]bool) arms {
	dom, off := e.sideIndices()
	at := func(i int) model.Landmark {
		l, _ := frame.Landmark(i)
		return l
	}
	return arms{
		domShoulder: at(dom.shoulder), offShoulder: at(off.shoulder),
		domElbow: at(dom.elbow), offElbow: at(off.elbow),
		domWrist: at(dom.wrist), offWrist: at(off.wrist),
		leftHip: at(model.LeftHip), rightHip: at(model.RightHip),
		has: has,
	}
}

// Angle returns the angle at p2 formed by p1-p2-p3 in degrees. Degenerate
// vectors yield 0.
func Angle(p1, p2, p3 model.Point) float64 {
	v1x, v1y := p1.X-p2.X, p1.Y-p2.Y
	v2x, v2y := p3.X-p2.X, p3.Y-p2.Y
	n1 := math.Hypot(v1x, v1y)
	n2 := math.Hypot(v2x, v2y)
	if n1 == 0 || n2 == 0 {
		return 0
	}
	cos := (v1x*v2x + v1y*v2y) / (n1 * n2)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

func extension(shoulder, elbow, wrist model.Point) float64 {
	limb := distance(shoulder, elbow) + distance(elbow, wrist)
	return math.Min(1, ratio(distance(shoulder, wrist), limb))
}

func distance(a, b model.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// ratio is num/den, or 0 when den is not positive.
func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
