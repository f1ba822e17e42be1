package kv

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotFound = errors.New("key not found")
	ErrEmptyKey = errors.New("empty key")
	ErrClosed   = errors.New("store closed")
)
