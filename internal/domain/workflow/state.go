package workflow

// State is the stage an account has reached within one tick
type State string

const (
	StateLoaded          State = "LOADED"
	StatePrechecked      State = "PRECHECKED"
	StateAuthenticated   State = "AUTHENTICATED"
	StateIdentified      State = "IDENTIFIED"
	StateCalendarChecked State = "CALENDAR_CHECKED"
	StatePunchStateKnown State = "PUNCH_STATE_KNOWN"
	StatePunched         State = "PUNCHED"
	StateSkipped         State = "SKIPPED"
	StateFailed          State = "FAILED"
)

var validStates = map[State]bool{
	StateLoaded:          true,
	StatePrechecked:      true,
	StateAuthenticated:   true,
	StateIdentified:      true,
	StateCalendarChecked: true,
	StatePunchStateKnown: true,
	StatePunched:         true,
	StateSkipped:         true,
	StateFailed:          true,
}

var terminalStates = map[State]bool{
	StatePunched: true,
	StateSkipped: true,
	StateFailed:  true,
}

// IsTerminal returns true once the account is done for this tick
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known stage
func (s State) IsValid() bool {
	return validStates[s]
}
