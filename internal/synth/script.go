package synth

import (
	"math/rand/v2"

	"github.com/okian/volley/internal/domain/model"
)

// Script spacing in seconds.
const (
	StrokeSpacing = 3.0
	RallyBreak    = 6.0
	maxGround     = 4
	firstContact  = 1.0
)

// MatchScript builds a reproducible script of rallies. Each rally opens with
// a serve followed by one to four groundstrokes; the last stroke ends the
// point with a winner or an error.
func MatchScript(rallies int, seed uint64) []Stroke {
	rng := rand.New(rand.NewPCG(seed, ^seed))
	var out []Stroke
	t := firstContact
	for r := 0; r < rallies; r++ {
		out = append(out, Stroke{Type: model.Serve, At: t})
		n := 1 + rng.IntN(maxGround)
		for i := 0; i < n; i++ {
			t += StrokeSpacing
			s := Stroke{Type: model.Forehand, Direction: model.DirectionCrossCourt}
			if rng.IntN(2) == 1 {
				s.Type = model.Backhand
			}
			if rng.IntN(3) == 0 {
				s.Direction = model.DirectionDownLine
			}
			s.At = t
			out = append(out, s)
		}
		last := &out[len(out)-1]
		last.Outcome = model.OutcomeWinner
		if rng.IntN(2) == 1 {
			last.Outcome = model.OutcomeError
		}
		t += RallyBreak + StrokeSpacing
	}
	return out
}

// ServeScript builds n serves at the given spacing.
func ServeScript(n int, spacing float64) []Stroke {
	out := make([]Stroke, n)
	for i := range out {
		out[i] = Stroke{Type: model.Serve, At: firstContact + float64(i)*spacing}
	}
	return out
}

// Expected lists the stroke types a script should be classified as.
func Expected(script []Stroke) []model.StrokeType {
	out := make([]model.StrokeType, len(script))
	for i, s := range script {
		out[i] = s.Type
	}
	return out
}
