package model

// Winner is the side credited with a rally.
type Winner string

// Rally winners.
const (
	WinnerUnknown  Winner = "unknown"
	WinnerPlayer   Winner = "player"
	WinnerOpponent Winner = "opponent"
)

// Rally is a contiguous run of strokes treated as one point of play.
type Rally struct {
	ID          int
	Events      []StrokeEvent
	StartSec    float64
	EndSec      float64
	DurationSec float64
	Pressure    float64 // [0,1]
	Winner      Winner
}

// Len returns the number of strokes in the rally.
func (r Rally) Len() int {
	return len(r.Events)
}
