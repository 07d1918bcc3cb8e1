package ctl

import (
	"errors"
	"fmt"
)

// Sentinel kinds for CLI errors.
var (
	ErrUsage      = errors.New("usage")
	ErrNoSource   = errors.New("either --fixture or --url is required")
	ErrLocalOnly  = errors.New("command needs a local --fixture")
	ErrInvariant  = errors.New("report invariant violated")
	ErrRemoteRead = errors.New("remote read failed")
)

// RemoteError is the error envelope returned by a parley server.
type RemoteError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
}

func (e *RemoteError) Unwrap() error { return ErrRemoteRead }
