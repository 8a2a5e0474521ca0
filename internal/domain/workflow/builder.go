package workflow

import (
	"context"
	"fmt"
)

// GuardFunc decides whether a configured transition may be taken
type GuardFunc func(ctx context.Context) bool

// Builder collects transitions and produces independent machines
type Builder struct {
	transitions map[State]map[Trigger][]transition
}

// StateConfiguration configures the transitions leaving one state
type StateConfiguration struct {
	builder *Builder
	from    State
}

type transition struct {
	to    State
	guard GuardFunc
}

type stateMachine struct {
	current     State
	history     []State
	transitions map[State]map[Trigger][]transition
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{transitions: make(map[State]map[Trigger][]transition)}
}

// Configure returns the configuration for state, panicking on unknown states
func (b *Builder) Configure(state State) *StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}
	if _, ok := b.transitions[state]; !ok {
		b.transitions[state] = make(map[Trigger][]transition)
	}
	return &StateConfiguration{builder: b, from: state}
}

// Permit allows trigger to move to toState
func (c *StateConfiguration) Permit(trigger Trigger, toState State) *StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

// PermitIf allows trigger to move to toState when guard passes.
// Transitions for the same trigger are tried in the order they were added.
func (c *StateConfiguration) PermitIf(trigger Trigger, toState State, guard GuardFunc) *StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	byTrigger := c.builder.transitions[c.from]
	byTrigger[trigger] = append(byTrigger[trigger], transition{to: toState, guard: guard})
	return c
}

// Build creates a machine in initialState. Later builder changes do not affect it.
func (b *Builder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	copied := make(map[State]map[Trigger][]transition, len(b.transitions))
	for state, byTrigger := range b.transitions {
		inner := make(map[Trigger][]transition, len(byTrigger))
		for trigger, ts := range byTrigger {
			inner[trigger] = append([]transition(nil), ts...)
		}
		copied[state] = inner
	}

	return &stateMachine{
		current:     initialState,
		history:     []State{initialState},
		transitions: copied,
	}
}

func (m *stateMachine) State() State {
	return m.current
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	return len(m.transitions[m.current][trigger]) > 0
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	ts := m.transitions[m.current][trigger]
	if len(ts) == 0 {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	for _, t := range ts {
		if t.guard == nil || t.guard(ctx) {
			m.current = t.to
			m.history = append(m.history, t.to)
			return nil
		}
	}

	return fmt.Errorf("%w: trigger %s from state %s", ErrGuardFailed, trigger, m.current)
}

func (m *stateMachine) History() []State {
	return append([]State(nil), m.history...)
}
