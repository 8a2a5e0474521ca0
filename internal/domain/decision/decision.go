// Package decision holds the pure punch-or-skip rules applied to one account.
package decision

import "github.com/garyjia/hrone-autopunch/internal/domain/entity"

const (
	// CheckInHour is the hour of the morning tick
	CheckInHour = 8
	// CheckOutHour is the hour of the evening tick
	CheckOutHour = 17
)

// Windows are the hours at which punches are allowed
type Windows struct {
	CheckIn  int
	CheckOut int
}

// DefaultWindows returns the 08:00 / 17:00 windows
func DefaultWindows() Windows {
	return Windows{CheckIn: CheckInHour, CheckOut: CheckOutHour}
}

// ShouldPunch decides whether an account needs a punch at hour.
//   - not checked in during the check-in hour: punch
//   - not checked out during the check-out hour: punch
//   - anything else: skip
func (w Windows) ShouldPunch(hour int, state entity.PunchState) bool {
	if !state.TimeIn && hour == w.CheckIn {
		return true
	}
	if !state.TimeOut && hour == w.CheckOut {
		return true
	}
	return false
}

// Direction returns the punch direction label for hour: in during [CheckIn, CheckOut), out otherwise
func (w Windows) Direction(hour int) Direction {
	if hour >= w.CheckIn && hour < w.CheckOut {
		return DirectionIn
	}
	return DirectionOut
}

// ShouldPunch applies the default windows
func ShouldPunch(hour int, state entity.PunchState) bool {
	return DefaultWindows().ShouldPunch(hour, state)
}

// Direction is the canonical check-in/check-out label
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// String returns the string representation of the direction
func (d Direction) String() string {
	return string(d)
}

// Title returns the capitalised form used in alert titles
func (d Direction) Title() string {
	if d == DirectionIn {
		return "In"
	}
	return "Out"
}
