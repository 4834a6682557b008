package classify

import "github.com/okian/volley/internal/domain/model"

// Technique returns a short coaching note for the event.
func (r *Refiner) Technique(e model.StrokeEvent) string {
	fast := e.PeakSpeed >= r.fastSwing
	switch e.Type {
	case model.Forehand:
		switch {
		case fast && e.Direction == model.DirectionDownLine:
			return "Powerful down-the-line winner"
		case fast:
			return "Powerful cross-court winner"
		default:
			return "Controlled forehand"
		}
	case model.Backhand:
		if fast {
			return "Down-the-line approach"
		}
		return "Defensive backhand"
	case model.Serve:
		if fast {
			return "First serve to T"
		}
		return "Second serve with placement"
	case model.Volley:
		return "Net approach volley"
	case model.Overhead:
		return "Overhead smash"
	default:
		return ""
	}
}
