package features

import "errors"

// ErrInsufficientLandmarks marks a frame without enough visible required
// landmarks. It is a normal "no signal" outcome, not a failure.
var ErrInsufficientLandmarks = errors.New("insufficient landmarks")
