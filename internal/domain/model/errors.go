package model

import "errors"

// Sentinel kinds for schedule validation.
var (
	ErrInvalidRoundWindow = errors.New("invalid round window")
	ErrOverlappingRounds  = errors.New("overlapping rounds")
)
