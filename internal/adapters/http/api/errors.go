package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// opError tags an error with the handler operation that produced it.
type opError struct {
	op  string
	err error
}

func (e *opError) Error() string { return fmt.Sprintf("%s: %v", e.op, e.err) }
func (e *opError) Unwrap() error { return e.err }

// NewKind reports a sentinel kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, err: kind}
}

// Wrap attaches op to an upstream error, keeping it matchable with errors.Is.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}
