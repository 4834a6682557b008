package service

import (
	"errors"

	"github.com/okian/volley/internal/adapters/repository"
)

// Sentinel kinds returned by the Service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("backpressure")
	ErrNotFound     = repository.ErrNotFound
	ErrInProgress   = repository.ErrInProgress

	// ErrSessionChanged reports a record that vanished between Create and Get.
	ErrSessionChanged = errors.New("session changed concurrently")
)
