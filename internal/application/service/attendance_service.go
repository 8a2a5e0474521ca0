package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
	"github.com/garyjia/hrone-autopunch/internal/domain/clock"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
)

// AttendanceService reads the vendor's view of today's attendance
type AttendanceService interface {
	// TodayCalendarEntry returns the calendar record for now's date
	TodayCalendarEntry(ctx context.Context, creds Credentials, now clock.Context) (*entity.CalendarDay, error)

	// PunchState reconstructs today's check-in/check-out pair from the raw punch list
	PunchState(ctx context.Context, creds Credentials, now clock.Context) (entity.PunchState, error)
}

type attendanceServiceImpl struct {
	client port.HROneClient
	logger Logger
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(client port.HROneClient, logger Logger) AttendanceService {
	return &attendanceServiceImpl{
		client: client,
		logger: logger,
	}
}

func (s *attendanceServiceImpl) TodayCalendarEntry(ctx context.Context, creds Credentials, now clock.Context) (*entity.CalendarDay, error) {
	days, err := s.client.GetCalendar(ctx, creds.Token, creds.EmployeeID, now.Month, now.Year)
	if err != nil {
		s.logger.Error("Failed to fetch calendar", "error", err, "employee_id", creds.EmployeeID)
		return nil, err
	}

	key := now.DateKey()
	for i := range days {
		if days[i].AttendanceDate == key {
			return &days[i], nil
		}
	}

	s.logger.Warn("Calendar has no entry for today", "employee_id", creds.EmployeeID, "date", key, "entries", len(days))
	return nil, fmt.Errorf("%w: no entry for %s", entity.ErrCalendarUnavailable, key)
}

func (s *attendanceServiceImpl) PunchState(ctx context.Context, creds Credentials, now clock.Context) (entity.PunchState, error) {
	punches, err := s.client.GetRawPunches(ctx, creds.Token, creds.EmployeeID, now.RawPunchDate())
	if err != nil {
		s.logger.Error("Failed to fetch raw punches", "error", err, "employee_id", creds.EmployeeID)
		return entity.PunchState{}, err
	}

	switch punches.StatusCode {
	case http.StatusNoContent:
		return entity.PunchState{}, nil
	case http.StatusOK:
		return entity.PunchState{
			TimeIn:  hasPunchAt(punches.Records, 0),
			TimeOut: hasPunchAt(punches.Records, 1),
		}, nil
	default:
		s.logger.Error("Unexpected raw punch status", "status", punches.StatusCode, "employee_id", creds.EmployeeID)
		return entity.PunchState{}, fmt.Errorf("%w: status %d", entity.ErrPunchStateUnavailable, punches.StatusCode)
	}
}

func hasPunchAt(records []port.RawPunch, i int) bool {
	return len(records) > i && records[i].PunchDateTime != ""
}
