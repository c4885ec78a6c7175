package reconcile

import "errors"

// ErrUnknownStrategy is returned by ParseStrategy.
var ErrUnknownStrategy = errors.New("unknown reconcile strategy")
