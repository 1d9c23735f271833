package repository

import "errors"

// Sentinel kinds for visit store errors.
var (
	ErrStoreClosed    = errors.New("visit store closed")
	ErrInvalidEvent   = errors.New("invalid visit event")
	ErrUnknownBackend = errors.New("unknown visit store backend")
)
