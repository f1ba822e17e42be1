package drill

import "time"

// HTTP status codes used by the drill.
const (
	StatusOK                 = 200
	StatusConflict           = 409
	StatusServiceUnavailable = 503
)

// Retry policy for transient feedback failures.
const (
	MaxRespondAttempts = 3
	RetryDelay         = 200 * time.Millisecond
)

// Default values.
const (
	DefaultBaseURL    = "http://localhost:9080"
	DefaultEmail      = "john.smith@retailtraining.com"
	DefaultScenarioID = "cs-1"
	DefaultTimeout    = 30 * time.Second
)

const logFilePermission = 0600
