package report

import "errors"

// ErrUnknownRound is returned when the requested round index is not part of the event.
var ErrUnknownRound = errors.New("unknown round")
