package outcome

import "errors"

// Per-record failures carried on Invalid outcomes.
var (
	ErrMissingValue = errors.New("agreement is missing a case parameter")
	ErrBadValue     = errors.New("agreement value does not fit its parameter")
)
