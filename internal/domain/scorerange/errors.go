package scorerange

import (
	"errors"
	"fmt"
)

// ErrCaseConfig marks a case whose score range cannot be established. Every
// other error in this package wraps it.
var ErrCaseConfig = errors.New("case configuration error")

// Range calculation failures.
var (
	ErrNotScorable    = fmt.Errorf("%w: case has no scoring formulas", ErrCaseConfig)
	ErrInvalidDomain  = fmt.Errorf("%w: invalid parameter domain", ErrCaseConfig)
	ErrDomainTooLarge = fmt.Errorf("%w: parameter domain too large", ErrCaseConfig)
	ErrFormulaRange   = fmt.Errorf("%w: formula cannot be evaluated over its domain", ErrCaseConfig)
)
