package model

import "strings"

// StrokeType labels a classified stroke.
type StrokeType string

// Supported stroke types.
const (
	Forehand StrokeType = "forehand"
	Backhand StrokeType = "backhand"
	Serve    StrokeType = "serve"
	Volley   StrokeType = "volley"
	Overhead StrokeType = "overhead"
	Unknown  StrokeType = "unknown"
)

// StrokeTypes lists every stroke type in a stable order.
func StrokeTypes() []StrokeType {
	return []StrokeType{Forehand, Backhand, Serve, Volley, Overhead, Unknown}
}

// ParseStrokeType maps a label onto a StrokeType, falling back to Unknown.
func ParseStrokeType(s string) StrokeType {
	switch t := StrokeType(strings.ToLower(strings.TrimSpace(s))); t {
	case Forehand, Backhand, Serve, Volley, Overhead:
		return t
	default:
		return Unknown
	}
}

// Outcome is optional per-stroke result metadata.
type Outcome string

// Known outcomes.
const (
	OutcomeNone   Outcome = ""
	OutcomeInPlay Outcome = "in_play"
	OutcomeWinner Outcome = "winner"
	OutcomeError  Outcome = "error"
)

// CourtZone is the coarse court region of the player at the stroke peak.
type CourtZone string

// Court zones, far to near.
const (
	ZoneUnknown    CourtZone = ""
	ZoneBaseline   CourtZone = "baseline"
	ZoneMidCourt   CourtZone = "mid_court"
	ZoneServiceBox CourtZone = "service_box"
	ZoneNet        CourtZone = "net"
)

// StrokeContext is the tactical situation derived from the court zone.
type StrokeContext string

// Stroke contexts.
const (
	ContextUnknown  StrokeContext = ""
	ContextServe    StrokeContext = "serve"
	ContextRally    StrokeContext = "rally"
	ContextApproach StrokeContext = "approach"
)

// ShotDirection is the ball direction after contact.
type ShotDirection string

// Shot directions.
const (
	DirectionUnknown    ShotDirection = ""
	DirectionCrossCourt ShotDirection = "cross_court"
	DirectionDownLine   ShotDirection = "down_line"
)

// CandidateEvent is a provisional stroke interval found by peak detection.
type CandidateEvent struct {
	StartTime     float64
	PeakTime      float64
	EndTime       float64
	PeakMagnitude float64
	RawConfidence float64

	// Indices into the motion sample sequence the candidate came from.
	StartIndex int
	PeakIndex  int
	EndIndex   int
}

// Overlaps reports whether two candidate intervals share any time.
func (c CandidateEvent) Overlaps(o CandidateEvent) bool {
	return c.StartTime <= o.EndTime && c.EndTime >= o.StartTime
}

// StrokeEvent is a classified stroke on the timeline. Events are never
// mutated after assembly; refinements produce a copy whose Origin points to
// the event they were derived from.
type StrokeEvent struct {
	ID          int
	Type        StrokeType
	Confidence  float64
	StartSec    float64
	EndSec      float64
	DurationSec float64
	PeakSec     float64
	PeakSpeed   float64
	Policy      string // classifier that produced Type
	Technique   string
	Features    FeatureVector
	Position    Point
	Zone        CourtZone
	Context     StrokeContext
	Direction   ShotDirection
	Outcome     Outcome
	Origin      *StrokeEvent
}

// Root walks the refinement chain back to the first classification.
func (e StrokeEvent) Root() StrokeEvent {
	for e.Origin != nil {
		e = *e.Origin
	}
	return e
}
