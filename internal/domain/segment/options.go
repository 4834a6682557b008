package segment

// Option applies a configuration option to the Segmenter.
type Option func(*Segmenter)

// WithMinPeakSpeed sets the absolute speed a peak must exceed.
func WithMinPeakSpeed(v float64) Option {
	return func(s *Segmenter) {
		if v >= 0 {
			s.minPeak = v
		}
	}
}

// WithBoundaryRatio sets the fraction of the peak speed that bounds an event.
func WithBoundaryRatio(r float64) Option {
	return func(s *Segmenter) {
		if r > 0 && r < 1 {
			s.boundaryRatio = r
		}
	}
}

// WithNormalization sets the speed mapped to a raw confidence of 1.
func WithNormalization(n float64) Option {
	return func(s *Segmenter) {
		if n > 0 {
			s.normalization = n
		}
	}
}
