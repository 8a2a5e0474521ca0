package workflow

import "context"

// StateMachine tracks how far one account got through a tick
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is configured for the current state
	CanFire(trigger Trigger) bool

	// Fire moves to the next state if the trigger is permitted
	Fire(ctx context.Context, trigger Trigger) error

	// History returns every state visited, starting with the initial one
	History() []State
}
