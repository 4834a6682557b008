package features

// Side names the dominant arm.
type Side string

// Supported sides.
const (
	Right Side = "right"
	Left  Side = "left"
)

// ParseSide maps a config value onto a Side; anything but "left" is Right.
func ParseSide(s string) Side {
	if Side(s) == Left {
		return Left
	}
	return Right
}

// Sign is +1 for Right and -1 for Left. Positive image x is treated as the
// right-hand side of the player.
func (s Side) Sign() float64 {
	if s == Left {
		return -1
	}
	return 1
}

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithMinVisibility sets the visibility a landmark needs to count.
func WithMinVisibility(v float64) Option {
	return func(e *Extractor) {
		if v >= 0 && v <= 1 {
			e.minVisibility = v
		}
	}
}

// WithMinLandmarks sets how many of the required landmarks must be visible.
func WithMinLandmarks(n int) Option {
	return func(e *Extractor) {
		if n > 0 && n <= len(requiredLandmarks) {
			e.minLandmarks = n
		}
	}
}

// WithDominantSide selects the dominant arm.
func WithDominantSide(s Side) Option {
	return func(e *Extractor) {
		if s == Left || s == Right {
			e.side = s
		}
	}
}

// WithAboveShoulderMargin sets how far the wrist line must be above the
// shoulder line before WristsAboveShoulders is set.
func WithAboveShoulderMargin(m float64) Option {
	return func(e *Extractor) {
		if m >= 0 {
			e.aboveMargin = m
		}
	}
}
