package repository

import "errors"

// Sentinel kinds for progress store errors.
var (
	ErrNotFound      = errors.New("progress record not found")
	ErrInvalidRecord = errors.New("invalid progress record")
)
