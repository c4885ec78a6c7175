package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("assignment not found")
	ErrInvalidEvent = errors.New("invalid event id")
	ErrClosed       = errors.New("store closed")
)
