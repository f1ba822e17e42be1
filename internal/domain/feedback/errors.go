package feedback

import "errors"

// ErrUnavailable reports that the provider could not produce a result in time.
// Callers may retry.
var ErrUnavailable = errors.New("feedback provider unavailable")
