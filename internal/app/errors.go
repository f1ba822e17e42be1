package service

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrEmptyResponse    = errors.New("response text is empty")
	ErrResponseTooLong  = errors.New("response text too long")
	ErrScenarioNotFound = errors.New("scenario not found")
)
