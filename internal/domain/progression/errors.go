package progression

import "errors"

// Sentinel errors returned by session transitions.
var (
	ErrNoActiveEmployee    = errors.New("no active employee")
	ErrNoActiveScenario    = errors.New("no active scenario")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrScenarioNotFound    = errors.New("scenario not found")
	ErrNoSteps             = errors.New("scenario has no steps")
	ErrSubmissionInFlight  = errors.New("submission already in flight")
	ErrAlreadySubmitted    = errors.New("response already submitted for this step")
	ErrProviderUnavailable = errors.New("feedback provider unavailable")
	ErrMissingDependency   = errors.New("catalog, store and provider are required")
)
