package roster

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrInvalidShape = errors.New("invalid roster shape")
)
