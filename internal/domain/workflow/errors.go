package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in the current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrGuardFailed is returned when every guard of a permitted trigger rejects it
	ErrGuardFailed = errors.New("guard condition failed")

	// ErrTerminalState is returned when firing from a terminal state
	ErrTerminalState = errors.New("state is terminal")
)
