package aggregate

import "errors"

// ErrInvalidConfiguration is returned by constructors given a non-positive
// or non-finite duration, or a threshold table that is not strictly
// ascending.
var ErrInvalidConfiguration = errors.New("aggregate: invalid configuration")
