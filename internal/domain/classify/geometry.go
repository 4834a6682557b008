package classify

import (
	"math"

	"github.com/okian/volley/internal/domain/model"
)

// Geometry classifies from the body shape at the peak frame. Rules are
// evaluated in priority order: serve/overhead, volley, groundstroke, then
// two-handed backhand.
type Geometry struct {
	cfg settings
}

// NewGeometry creates the geometry policy.
func NewGeometry(opts ...Option) *Geometry {
	return &Geometry{cfg: apply(opts)}
}

// Name implements Classifier.
func (g *Geometry) Name() string { return PolicyGeometry }

// Classify implements Classifier.
func (g *Geometry) Classify(in Input) Result {
	fv := in.Features
	if !fv.Valid {
		return Result{Type: model.Unknown, Policy: PolicyGeometry}
	}

	hasSep := fv.Features.Has(model.FeatWristSeparation)
	hasExt := fv.Features.Has(model.FeatExtension)

	var t model.StrokeType
	var conf float64
	switch {
	case fv.WristsAboveShoulders:
		t, conf = g.overhead(fv)
	case hasSep && hasExt && fv.WristSeparation < g.cfg.wideSeparation && fv.DominantExtension < g.cfg.volleyExtension:
		t, conf = g.volley(fv)
	case hasSep && fv.WristSeparation >= g.cfg.wideSeparation:
		t, conf = g.groundstroke(fv)
	case hasSep:
		t, conf = g.twoHanded(fv)
	default:
		return Result{Type: model.Unknown, Policy: PolicyGeometry}
	}

	conf *= math.Max(0, 1-g.cfg.missingPenalty*float64(fv.MissingLandmarks))
	conf = clamp01(conf)
	if conf < g.cfg.floor {
		t = model.Unknown
	}
	return Result{Type: t, Confidence: conf, Policy: PolicyGeometry}
}

// overhead separates a serve (toss arm up or level) from an overhead smash
// (off arm dropped below the shoulders).
func (g *Geometry) overhead(fv model.FeatureVector) (model.StrokeType, float64) {
	if fv.OffWristHeight < -g.cfg.overheadOffDrop {
		s := score{value: 0.6, ceiling: 0.9}
		s.add(fv.DominantWristHeight > 0.1, 0.1)
		s.add(fv.DominantExtension > 0.8, 0.1)
		return model.Overhead, s.result()
	}
	s := score{value: 0.65, ceiling: 0.95}
	s.add(fv.WristHeightDiff > 0.1, 0.1)
	s.add(fv.DominantExtension > 0.8, 0.1)
	s.add(fv.DominantElbowAngle > 150, 0.05)
	return model.Serve, s.result()
}

func (g *Geometry) volley(fv model.FeatureVector) (model.StrokeType, float64) {
	s := score{value: 0.55, ceiling: 0.85}
	s.add(fv.WristSeparation < 0.6, 0.1)
	s.add(fv.DominantExtension < 0.5, 0.1)
	s.add(fv.Features.Has(model.FeatWristPosition) && math.Abs(fv.DominantWristRelY) < 0.5, 0.05)
	return model.Volley, s.result()
}

// groundstroke splits on which side of the body center the dominant wrist
// is; DominantWristRelX is already signed toward the dominant side.
func (g *Geometry) groundstroke(fv model.FeatureVector) (model.StrokeType, float64) {
	t := model.Forehand
	leads := fv.DominantLead > 0
	if fv.DominantWristRelX < 0 {
		t = model.Backhand
		leads = fv.DominantLead < 0
	}
	s := score{value: 0.6, ceiling: 0.9}
	s.add(leads, 0.1)
	s.add(math.Abs(fv.DominantWristRelX) > 0.5, 0.1)
	s.add(fv.DominantExtension > 0.7, 0.05)
	return t, s.result()
}

// twoHanded covers hands held together with extended arms.
func (g *Geometry) twoHanded(fv model.FeatureVector) (model.StrokeType, float64) {
	if fv.DominantWristRelX > 0 {
		s := score{value: 0.45, ceiling: 0.7}
		s.add(fv.DominantWristRelX > 0.5, 0.1)
		return model.Forehand, s.result()
	}
	s := score{value: 0.5, ceiling: 0.75}
	s.add(fv.OffWristRelX < 0, 0.1)
	s.add(fv.Features.Has(model.FeatAsymmetry) && fv.ElbowAsymmetry < 0.15, 0.1)
	return model.Backhand, s.result()
}
