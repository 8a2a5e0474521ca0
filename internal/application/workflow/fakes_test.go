package workflow

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
	"github.com/garyjia/hrone-autopunch/internal/domain/decision"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
)

// eventLog records the order in which collaborators were called
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeAccountRepo struct {
	log      *eventLog
	accounts []*entity.Account
	listErr  error
}

func (r *fakeAccountRepo) find(id int64) *entity.Account {
	for _, a := range r.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (r *fakeAccountRepo) List(ctx context.Context) ([]*entity.Account, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*entity.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	if a := r.find(id); a != nil {
		return a, nil
	}
	return nil, entity.ErrAccountNotFound
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	account.ID = int64(len(r.accounts) + 1)
	r.accounts = append(r.accounts, account)
	return nil
}

func (r *fakeAccountRepo) UpdateToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	r.log.add("repo.UpdateToken %d", id)
	a := r.find(id)
	a.AccessToken = token
	a.ExpiresAt = &expiresAt
	return nil
}

func (r *fakeAccountRepo) UpdateEmployeeID(ctx context.Context, id int64, employeeID string) error {
	r.log.add("repo.UpdateEmployeeID %d", id)
	r.find(id).EmployeeID = employeeID
	return nil
}

func (r *fakeAccountRepo) UpdateLastPunch(ctx context.Context, id int64, state entity.PunchState) error {
	r.find(id).LastPunch = &state
	return nil
}

func (r *fakeAccountRepo) SetSkipUntil(ctx context.Context, id int64, until *time.Time) error {
	r.find(id).SkipUntil = until
	return nil
}

func (r *fakeAccountRepo) SetLeaveUntil(ctx context.Context, id int64, until *time.Time) error {
	r.find(id).HasLeaveUntil = until
	return nil
}

type fakeTickRepo struct {
	saved []*entity.TickRun
}

func (r *fakeTickRepo) Save(ctx context.Context, run *entity.TickRun) error {
	r.saved = append(r.saved, run)
	return nil
}

func (r *fakeTickRepo) ListRecent(ctx context.Context, limit int) ([]*entity.TickRun, error) {
	return r.saved, nil
}

func (r *fakeTickRepo) ListOutcomes(ctx context.Context, from, to time.Time) ([]*entity.PunchOutcome, error) {
	return nil, nil
}

// fakeVendor is an in-memory HROne keyed by username / employee id
type fakeVendor struct {
	log *eventLog

	tokenFails     map[string]bool
	employeeIDs    map[string]string // token -> employee id
	calendarFails  map[string]bool   // employee id
	calendar       map[string]entity.CalendarDay
	rawPunchStatus map[string]int
	rawPunches     map[string][]port.RawPunch
	punchFails     map[string]bool

	// block, when set, holds GetCalendar until closed
	block   chan struct{}
	entered chan struct{}
}

func newFakeVendor(log *eventLog) *fakeVendor {
	return &fakeVendor{
		log:            log,
		tokenFails:     map[string]bool{},
		employeeIDs:    map[string]string{},
		calendarFails:  map[string]bool{},
		calendar:       map[string]entity.CalendarDay{},
		rawPunchStatus: map[string]int{},
		rawPunches:     map[string][]port.RawPunch{},
		punchFails:     map[string]bool{},
	}
}

func (v *fakeVendor) RequestToken(ctx context.Context, username, password string) (*port.TokenGrant, error) {
	v.log.add("vendor.RequestToken %s", username)
	if v.tokenFails[username] {
		return nil, entity.ErrCredentialFailure
	}
	token := "token-" + username
	if _, ok := v.employeeIDs[token]; !ok {
		v.employeeIDs[token] = "emp-" + username
	}
	return &port.TokenGrant{AccessToken: token, ExpiresIn: 3600}, nil
}

func (v *fakeVendor) GetEmployeeID(ctx context.Context, token string) (string, error) {
	v.log.add("vendor.GetEmployeeID")
	if id, ok := v.employeeIDs[token]; ok {
		return id, nil
	}
	return "", entity.ErrIdentityFailure
}

func (v *fakeVendor) GetCalendar(ctx context.Context, token, employeeID, month, year string) ([]entity.CalendarDay, error) {
	v.log.add("vendor.GetCalendar %s", employeeID)
	if v.entered != nil {
		v.entered <- struct{}{}
	}
	if v.block != nil {
		<-v.block
	}
	if v.calendarFails[employeeID] {
		return nil, entity.ErrCalendarUnavailable
	}
	if day, ok := v.calendar[employeeID]; ok {
		return []entity.CalendarDay{day}, nil
	}
	return []entity.CalendarDay{{AttendanceDate: "2024-03-07T00:00:00", FirstHalfStatus: "-", SecondHalfStatus: "-"}}, nil
}

func (v *fakeVendor) GetRawPunches(ctx context.Context, token, employeeID, date string) (*port.RawPunches, error) {
	v.log.add("vendor.GetRawPunches %s %s", employeeID, date)
	status, ok := v.rawPunchStatus[employeeID]
	if !ok {
		status = http.StatusNoContent
	}
	return &port.RawPunches{StatusCode: status, Records: v.rawPunches[employeeID]}, nil
}

func (v *fakeVendor) SubmitPunch(ctx context.Context, token string, req port.PunchRequest) error {
	v.log.add("vendor.SubmitPunch %s %s", req.EmployeeID, req.PunchTime)
	if v.punchFails[req.EmployeeID] {
		return entity.ErrPunchRejected
	}
	return nil
}

type sentAlert struct {
	kind     string
	username string
	message  string
}

type fakeNotifier struct {
	log    *eventLog
	alerts []sentAlert
}

func (n *fakeNotifier) Failure(ctx context.Context, account *entity.Account, message string) error {
	n.log.add("notify.Failure %s", account.Username)
	n.alerts = append(n.alerts, sentAlert{"failure", account.Username, message})
	return nil
}

func (n *fakeNotifier) Skipped(ctx context.Context, account *entity.Account, message string) error {
	n.log.add("notify.Skipped %s", account.Username)
	n.alerts = append(n.alerts, sentAlert{"skipped", account.Username, message})
	return nil
}

func (n *fakeNotifier) Punched(ctx context.Context, account *entity.Account, direction decision.Direction, punchTime string) error {
	n.log.add("notify.Punched %s %s", account.Username, direction)
	n.alerts = append(n.alerts, sentAlert{"punched", account.Username, direction.String() + " " + punchTime})
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
