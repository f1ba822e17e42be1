package api

import (
	"errors"
	"net/http"

	service "github.com/okian/shopfloor/internal/app"
	"github.com/okian/shopfloor/internal/domain/identity"
	"github.com/okian/shopfloor/internal/domain/progression"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("unavailable")
	ErrInternal     = errors.New("internal error")
)

// Error is an API error tagged with the operation and its kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind returns an error of kind without a cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap tags err with op and the kind derived from it.
func Wrap(op string, err error) error {
	return &Error{Op: op, Kind: kindOf(err), Err: err}
}

// kindOf maps domain errors to API kinds.
func kindOf(err error) error {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrEmptyResponse),
		errors.Is(err, service.ErrResponseTooLong),
		errors.Is(err, identity.ErrMissingCredentials):
		return ErrBadRequest
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrInvalidToken),
		errors.Is(err, identity.ErrNotSignedIn),
		errors.Is(err, progression.ErrNoActiveEmployee):
		return ErrUnauthorized
	case errors.Is(err, ErrNotFound),
		errors.Is(err, service.ErrScenarioNotFound),
		errors.Is(err, progression.ErrScenarioNotFound):
		return ErrNotFound
	case errors.Is(err, ErrConflict),
		errors.Is(err, progression.ErrInvalidTransition),
		errors.Is(err, progression.ErrNoActiveScenario),
		errors.Is(err, progression.ErrSubmissionInFlight),
		errors.Is(err, progression.ErrAlreadySubmitted),
		errors.Is(err, progression.ErrNoSteps):
		return ErrConflict
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, progression.ErrProviderUnavailable),
		errors.Is(err, service.ErrNotStarted):
		return ErrUnavailable
	default:
		return ErrInternal
	}
}

// statusOf returns the HTTP status and error code for err.
func statusOf(err error) (int, string) {
	switch kindOf(err) {
	case ErrBadRequest:
		return http.StatusBadRequest, "bad_request"
	case ErrUnauthorized:
		return http.StatusUnauthorized, "unauthorized"
	case ErrNotFound:
		return http.StatusNotFound, "not_found"
	case ErrConflict:
		return http.StatusConflict, "conflict"
	case ErrUnavailable:
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
