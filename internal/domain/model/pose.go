// Package model contains domain models passed between layers.
package model

// Indices of the 33-point body schema produced by the pose estimator.
// The numbering is part of the input contract and must not change.
const (
	Nose          = 0
	LeftShoulder  = 11
	RightShoulder = 12
	LeftElbow     = 13
	RightElbow    = 14
	LeftWrist     = 15
	RightWrist    = 16
	LeftHip       = 23
	RightHip      = 24
	LeftKnee      = 25
	RightKnee     = 26
	LeftAnkle     = 27
	RightAnkle    = 28

	// LandmarkCount is the size of a complete keypoint set.
	LandmarkCount = 33
)

// Landmark is one tracked anatomical point. X and Y are normalized to the
// image (0,0 top-left), Z is relative depth, Visibility is in [0,1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Point is a 2-D position in normalized coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point drops depth and visibility.
func (l Landmark) Point() Point {
	return Point{X: l.X, Y: l.Y}
}

// PoseFrame is the pose observation of a single sampled video frame.
// An empty Keypoints slice means no body was detected in the frame.
type PoseFrame struct {
	FrameIndex   int        // monotonically increasing frame number
	Timestamp    float64    // seconds from the start of the video
	HasTimestamp bool       // Timestamp was supplied; otherwise it is derived from FrameIndex
	Keypoints    []Landmark // ordered by the body schema above
}

// Landmark returns the keypoint at index i if the frame carries it.
func (f PoseFrame) Landmark(i int) (Landmark, bool) {
	if i < 0 || i >= len(f.Keypoints) {
		return Landmark{}, false
	}
	return f.Keypoints[i], true
}

// Visible returns the keypoint at index i when its visibility reaches minVisibility.
func (f PoseFrame) Visible(i int, minVisibility float64) (Landmark, bool) {
	l, ok := f.Landmark(i)
	if !ok || l.Visibility < minVisibility {
		return Landmark{}, false
	}
	return l, true
}

// Empty reports whether the detector found no body in the frame.
func (f PoseFrame) Empty() bool {
	return len(f.Keypoints) == 0
}

// MotionSample is the velocity of the representative body point between two
// consecutive usable frames, stamped with the later frame's time.
type MotionSample struct {
	Timestamp float64 // seconds
	Speed     float64 // euclidean norm of (VX, VY), normalized units per second
	VX        float64
	VY        float64
}
