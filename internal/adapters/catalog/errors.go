package catalog

import "errors"

// Sentinel kinds for loader errors.
var (
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrInvalidPlan    = errors.New("invalid plan")
)
