package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("document not found")
	ErrInvalidFixture = errors.New("invalid fixture")
	ErrInvalidRecord  = errors.New("invalid record")
)
