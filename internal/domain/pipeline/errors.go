package pipeline

import "errors"

// Reasons for an empty timeline. They are reported on the Result, not
// returned as failures.
var (
	ErrNoBody             = errors.New("no analyzable motion: no body detected in any frame")
	ErrInsufficientFrames = errors.New("no analyzable motion: too few usable frames")
)

// Request validation errors.
var (
	ErrNilSession = errors.New("session is nil")
	ErrInvalidFPS = errors.New("fps must be positive")
)
