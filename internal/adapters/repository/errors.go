package repository

import "errors"

// Sentinel kinds for session repository errors.
var (
	ErrNotFound          = errors.New("session not found")
	ErrExists            = errors.New("session already exists")
	ErrFull              = errors.New("session repository full")
	ErrInProgress        = errors.New("session is being processed")
	ErrInvalidTransition = errors.New("invalid session status transition")
	ErrInvalidLimit      = errors.New("invalid list limit")
)
