package progression

import "fmt"

// State is the position of a session in the scenario flow.
type State int

// Session states.
const (
	// StateIdle has no active scenario.
	StateIdle State = iota
	// StateInStep waits for (or is processing) the response to the current step.
	StateInStep
	// StateAwaitingContinue holds the feedback of the current step until the
	// employee advances.
	StateAwaitingContinue
	// StateComplete means every step was answered; the attempt is not yet finalized.
	StateComplete
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StateInStep:           "in_step",
	StateAwaitingContinue: "awaiting_continue",
	StateComplete:         "complete",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}
