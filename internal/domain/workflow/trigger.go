package workflow

// Trigger is a step of the per-account punch procedure
type Trigger string

const (
	TriggerPrecheck     Trigger = "PRECHECK"
	TriggerAuthenticate Trigger = "AUTHENTICATE"
	TriggerIdentify     Trigger = "IDENTIFY"
	TriggerReadCalendar Trigger = "READ_CALENDAR"
	TriggerReadPunches  Trigger = "READ_PUNCHES"
	TriggerPunch        Trigger = "PUNCH"
	TriggerSkip         Trigger = "SKIP"
	TriggerFail         Trigger = "FAIL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
