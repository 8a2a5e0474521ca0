package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateLoaded, false},
		{StatePrechecked, false},
		{StateAuthenticated, false},
		{StateIdentified, false},
		{StateCalendarChecked, false},
		{StatePunchStateKnown, false},
		{StatePunched, true},
		{StateSkipped, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	if !StateLoaded.IsValid() {
		t.Error("LOADED should be valid")
	}
	if State("INVALID").IsValid() {
		t.Error("INVALID should not be valid")
	}
	if State("").IsValid() {
		t.Error("empty state should not be valid")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewBuilder().Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	NewBuilder().Build(State("INVALID"))
}

func TestStateConfiguration_PermitIf_GuardFails(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatePunchStateKnown).
		PermitIf(TriggerPunch, StatePunched, func(ctx context.Context) bool { return false })

	m := b.Build(StatePunchStateKnown)

	err := m.Fire(context.Background(), TriggerPunch)
	if !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}
	if m.State() != StatePunchStateKnown {
		t.Errorf("State should remain %v after failed Fire(), got %v", StatePunchStateKnown, m.State())
	}
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	m := NewPunchMachine(nil)

	err := m.Fire(context.Background(), TriggerPunch)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if m.State() != StateLoaded {
		t.Errorf("State should remain %v, got %v", StateLoaded, m.State())
	}
}

func TestStateMachine_BuildIsIndependent(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateLoaded).Permit(TriggerPrecheck, StatePrechecked)

	m := b.Build(StateLoaded)
	b.Configure(StateLoaded).Permit(TriggerSkip, StateSkipped)

	if m.CanFire(TriggerSkip) {
		t.Error("machine should not see transitions added after Build()")
	}
	if !m.CanFire(TriggerPrecheck) {
		t.Error("machine should keep transitions configured before Build()")
	}
}

func TestPunchMachine_HappyPath(t *testing.T) {
	ctx := context.Background()
	m := NewPunchMachine(func(context.Context) bool { return true })

	steps := []Trigger{TriggerPrecheck, TriggerAuthenticate, TriggerIdentify, TriggerReadCalendar, TriggerReadPunches, TriggerPunch}
	for _, s := range steps {
		if err := m.Fire(ctx, s); err != nil {
			t.Fatalf("Fire(%s) failed: %v", s, err)
		}
	}

	if m.State() != StatePunched {
		t.Errorf("final state = %v, want %v", m.State(), StatePunched)
	}
	if got := len(m.History()); got != len(steps)+1 {
		t.Errorf("History() length = %d, want %d", got, len(steps)+1)
	}
}

func TestPunchMachine_PunchGuardBlocksSkipDecision(t *testing.T) {
	ctx := context.Background()
	m := NewPunchMachine(func(context.Context) bool { return false })

	for _, s := range []Trigger{TriggerPrecheck, TriggerAuthenticate, TriggerIdentify, TriggerReadCalendar, TriggerReadPunches} {
		if err := m.Fire(ctx, s); err != nil {
			t.Fatalf("Fire(%s) failed: %v", s, err)
		}
	}

	if err := m.Fire(ctx, TriggerPunch); !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("Fire(PUNCH) error = %v, want %v", err, ErrGuardFailed)
	}
	if err := m.Fire(ctx, TriggerSkip); err != nil {
		t.Fatalf("Fire(SKIP) failed: %v", err)
	}
	if m.State() != StateSkipped {
		t.Errorf("final state = %v, want %v", m.State(), StateSkipped)
	}
}

func TestPunchMachine_TerminalStatesAcceptNothing(t *testing.T) {
	ctx := context.Background()
	m := NewPunchMachine(nil)

	if err := m.Fire(ctx, TriggerFail); err != nil {
		t.Fatalf("Fire(FAIL) failed: %v", err)
	}

	for _, trig := range []Trigger{TriggerPrecheck, TriggerSkip, TriggerFail, TriggerPunch} {
		if m.CanFire(trig) {
			t.Errorf("CanFire(%s) from FAILED = true, want false", trig)
		}
	}
}

func TestTrigger_String(t *testing.T) {
	if got := TriggerPunch.String(); got != "PUNCH" {
		t.Errorf("Trigger.String() = %v, want %v", got, "PUNCH")
	}
}
