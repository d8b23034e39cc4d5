package session

import "fmt"

// InvalidTransitionError reports an illegal control-state change.
// The session state is left untouched.
type InvalidTransitionError struct {
	Op   string
	From Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("session: cannot %s from %s", e.Op, e.From)
}

// SessionClosedError reports any action attempted after Stop.
// Stop is terminal; no further transitions are accepted.
type SessionClosedError struct {
	Op string
}

func (e *SessionClosedError) Error() string {
	return fmt.Sprintf("session: closed, cannot %s", e.Op)
}
