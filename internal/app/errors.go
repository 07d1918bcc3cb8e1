package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrNoStore         = errors.New("no document store configured")
	ErrRoundNotVisible = errors.New("round not visible yet")
)
