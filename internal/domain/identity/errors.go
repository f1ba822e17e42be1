package identity

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotSignedIn         = errors.New("no employee signed in")
	ErrMissingCredentials  = errors.New("email and password required")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidToken        = errors.New("invalid token")
	ErrMissingSigningKey   = errors.New("missing token signing key")
	ErrSessionStoreFailure = errors.New("session store failure")
)
