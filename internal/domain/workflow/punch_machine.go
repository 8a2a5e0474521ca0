package workflow

// NewPunchMachine returns the per-account procedure for one tick:
//
//	LOADED -> PRECHECKED -> AUTHENTICATED -> IDENTIFIED
//	       -> CALENDAR_CHECKED -> PUNCH_STATE_KNOWN -> PUNCHED
//
// Any non-terminal stage may end in SKIPPED or FAILED. The punch step is
// guarded by shouldPunch so a machine can never reach PUNCHED on a skip decision.
func NewPunchMachine(shouldPunch GuardFunc) StateMachine {
	b := NewBuilder()

	b.Configure(StateLoaded).
		Permit(TriggerPrecheck, StatePrechecked)
	b.Configure(StatePrechecked).
		Permit(TriggerAuthenticate, StateAuthenticated)
	b.Configure(StateAuthenticated).
		Permit(TriggerIdentify, StateIdentified)
	b.Configure(StateIdentified).
		Permit(TriggerReadCalendar, StateCalendarChecked)
	b.Configure(StateCalendarChecked).
		Permit(TriggerReadPunches, StatePunchStateKnown)
	b.Configure(StatePunchStateKnown).
		PermitIf(TriggerPunch, StatePunched, shouldPunch)

	for _, s := range []State{StateLoaded, StatePrechecked, StateAuthenticated, StateIdentified, StateCalendarChecked, StatePunchStateKnown} {
		b.Configure(s).
			Permit(TriggerSkip, StateSkipped).
			Permit(TriggerFail, StateFailed)
	}

	return b.Build(StateLoaded)
}
