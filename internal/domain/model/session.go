package model

import "time"

// SessionType hints how strokes should be interpreted.
type SessionType string

// Session types.
const (
	SessionMatch    SessionType = "match"
	SessionPractice SessionType = "practice"
	SessionServe    SessionType = "serve"
)

// CameraView is where the camera films the player from.
type CameraView string

// Camera views.
const (
	ViewBack CameraView = "back"
	ViewSide CameraView = "side"
)

// BallSample is one externally tracked ball position.
type BallSample struct {
	Timestamp float64 `json:"timestamp_sec"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// OutcomeMark annotates the stroke in play at a given time.
type OutcomeMark struct {
	AtSec   float64 `json:"at_sec"`
	Outcome Outcome `json:"outcome"`
}

// CourtContext carries calibrated court geometry as normalized y lines.
// The engine uses it as opaque input; it never calibrates itself.
type CourtContext struct {
	Calibrated bool    `json:"calibrated"`
	BaselineY  float64 `json:"baseline_y"`
	ServiceY   float64 `json:"service_y"`
	NetY       float64 `json:"net_y"`
}

// Session is one unit of work: a frame sequence plus auxiliary context.
type Session struct {
	ID          string
	FPS         float64
	Type        SessionType
	View        CameraView
	Frames      []PoseFrame
	Ball        []BallSample
	Outcomes    []OutcomeMark
	Court       *CourtContext
	SubmittedAt time.Time
}

// Job is a session queued for asynchronous analysis.
type Job struct {
	SessionID   string
	Session     *Session
	SubmittedAt time.Time
}

// Status is the lifecycle state of an asynchronously analysed session.
type Status string

// Session lifecycle: pending -> processing -> completed | failed.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Done reports whether the status is terminal.
func (s Status) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}
