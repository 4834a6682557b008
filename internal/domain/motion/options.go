package motion

// Point selects the representative body point whose velocity is tracked.
type Point string

// Representative points.
const (
	WristMidpoint Point = "wrist_midpoint"
	Centroid      Point = "centroid"
	DominantWrist Point = "dominant_wrist"
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithPoint selects the representative point.
func WithPoint(p Point) Option {
	return func(b *Builder) {
		switch p {
		case WristMidpoint, Centroid, DominantWrist:
			b.point = p
		}
	}
}

// WithSmoothingWindow sets the moving-average width in samples; values
// below 2 disable smoothing. Even widths are rounded up to stay centered.
func WithSmoothingWindow(n int) Option {
	return func(b *Builder) {
		if n < 2 {
			b.window = 1
			return
		}
		if n%2 == 0 {
			n++
		}
		b.window = n
	}
}

// WithMinVisibility sets the visibility a landmark needs to be tracked.
func WithMinVisibility(v float64) Option {
	return func(b *Builder) {
		if v >= 0 && v <= 1 {
			b.minVisibility = v
		}
	}
}

// WithFrameInterval sets the interval used when consecutive timestamps do
// not advance.
func WithFrameInterval(dt float64) Option {
	return func(b *Builder) {
		if dt > 0 {
			b.frameInterval = dt
		}
	}
}

// WithLeftDominant tracks the left wrist for DominantWrist.
func WithLeftDominant(left bool) Option {
	return func(b *Builder) {
		b.leftDominant = left
	}
}
