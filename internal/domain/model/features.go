package model

// FeatureSet is a bitmask telling which fields of a FeatureVector were
// computed from visible landmarks. Fields whose flag is unset hold 0.
type FeatureSet uint16

// Individual feature groups.
const (
	FeatWristPosition FeatureSet = 1 << iota
	FeatWristSeparation
	FeatWristHeight
	FeatElbowAngles
	FeatShoulderAngles
	FeatExtension
	FeatAsymmetry
	FeatBodyCenter
)

// Has reports whether every flag in f is present.
func (s FeatureSet) Has(f FeatureSet) bool {
	return s&f == f
}

// FeatureVector holds body-relative geometry derived from one PoseFrame.
// Left/right landmarks are mapped onto a dominant and an off side.
type FeatureVector struct {
	Valid            bool
	Features         FeatureSet
	MissingLandmarks int // required landmarks below the visibility threshold

	ShoulderWidth float64
	TorsoHeight   float64

	// Wrist positions relative to the shoulder midpoint, x divided by
	// shoulder width, y by torso height (negative y is above the shoulders).
	// X is signed so that positive points to the dominant side.
	DominantWristRelX float64
	DominantWristRelY float64
	OffWristRelX      float64
	OffWristRelY      float64

	// WristSeparation is the horizontal wrist gap over shoulder width.
	WristSeparation    float64
	WristSeparationRaw float64

	// Heights are shoulder line y minus wrist y; positive means above.
	WristHeightDiff      float64
	DominantWristHeight  float64
	OffWristHeight       float64
	WristsAboveShoulders bool

	// Angles in degrees.
	DominantElbowAngle    float64
	OffElbowAngle         float64
	DominantShoulderAngle float64
	OffShoulderAngle      float64

	// Extension is shoulder-to-wrist distance over upper arm plus forearm length.
	DominantExtension float64
	OffExtension      float64

	ElbowAsymmetry float64 // |dominant - off elbow angle| / 180
	ShoulderTilt   float64 // |left - right shoulder y|

	BodyCenterX float64 // shoulder midpoint x
	// DominantLead is positive when the dominant wrist is further to the
	// dominant side than the off wrist.
	DominantLead float64

	Position Point // hip midpoint, used as the player position proxy
}
