package service

import (
	"context"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
	"github.com/garyjia/hrone-autopunch/internal/domain/clock"
	"github.com/garyjia/hrone-autopunch/internal/domain/decision"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
)

// PunchService submits attendance punches
type PunchService interface {
	// Punch submits one punch at now and returns its direction. It never retries.
	Punch(ctx context.Context, account *entity.Account, creds Credentials, now clock.Context) (decision.Direction, error)
}

type punchServiceImpl struct {
	client  port.HROneClient
	windows decision.Windows
	logger  Logger
}

// NewPunchService creates a new PunchService
func NewPunchService(client port.HROneClient, windows decision.Windows, logger Logger) PunchService {
	return &punchServiceImpl{
		client:  client,
		windows: windows,
		logger:  logger,
	}
}

func (s *punchServiceImpl) Punch(ctx context.Context, account *entity.Account, creds Credentials, now clock.Context) (decision.Direction, error) {
	direction := s.windows.Direction(now.HourInt())

	err := s.client.SubmitPunch(ctx, creds.Token, port.PunchRequest{
		EmployeeID: creds.EmployeeID,
		PunchTime:  now.PunchKey(),
	})
	if err != nil {
		s.logger.Error("Punch rejected",
			"error", err,
			"account_id", account.ID,
			"direction", direction,
			"punch_time", now.PunchKey(),
		)
		return direction, err
	}

	s.logger.Info("Punch submitted",
		"account_id", account.ID,
		"employee_id", creds.EmployeeID,
		"direction", direction,
		"punch_time", now.PunchKey(),
	)
	return direction, nil
}
