package entity

// UnsetHalfDayStatus is HROne's placeholder for a half day with no override
const UnsetHalfDayStatus = "-"

// CalendarDay is one vendor-reported attendance calendar record
type CalendarDay struct {
	AttendanceDate   string `json:"attendanceDate"`
	FirstHalfStatus  string `json:"updatedFirstHalfStatus"`
	SecondHalfStatus string `json:"updatedSecondHalfStatus"`
}

// IsWorkingDay is true only when neither half carries a leave, holiday or weekend code
func (d *CalendarDay) IsWorkingDay() bool {
	return d.FirstHalfStatus == UnsetHalfDayStatus && d.SecondHalfStatus == UnsetHalfDayStatus
}
