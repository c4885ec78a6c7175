package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrQueueFull = errors.New("snapshot queue full")
	ErrClosed    = errors.New("snapshot queue closed")
)
