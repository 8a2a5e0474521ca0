package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a step is fired out of order
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrGuardFailed is returned when a guarded step is not allowed
	ErrGuardFailed = errors.New("guard condition failed")
)
