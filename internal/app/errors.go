package service

import "errors"

// Sentinel kinds returned by Service operations.
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidPage     = errors.New("invalid page")
	ErrNotStarted      = errors.New("service not started")
)
