package formula

import "errors"

// Sentinel errors for formula evaluation.
var (
	ErrEmptyFormula = errors.New("empty formula")
	ErrCompile      = errors.New("formula does not compile")
	ErrEvaluate     = errors.New("formula evaluation failed")
	ErrNonNumeric   = errors.New("formula result is not numeric")
	ErrNotFinite    = errors.New("formula result is not finite")
)
