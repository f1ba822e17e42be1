package drill

import (
	"errors"
	"fmt"
)

var (
	// ErrUnhealthy is returned when the health check does not pass.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrVerification is returned when an observed state breaks an expected property.
	ErrVerification = errors.New("verification failed")
)

// APIError is a non-2xx answer from the service.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// statusOf returns the HTTP status carried by err, or 0.
func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
