// Package clock derives the calendar fields used for one tick's date
// comparisons and HROne request payloads.
package clock

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// DefaultZone is the organisation time zone punches are made in
const DefaultZone = "Asia/Kolkata"

// Context is an immutable snapshot of "now" for a single tick.
// It is passed by value so every account in the tick sees the same hour.
type Context struct {
	t      time.Time
	Year   string
	Month  string
	Day    string
	Hour   string
	Minute string
}

// New builds a Context for t expressed in loc. A nil loc keeps t's own location.
func New(t time.Time, loc *time.Location) Context {
	if loc != nil {
		t = t.In(loc)
	}
	return Context{
		t:      t,
		Year:   fmt.Sprintf("%04d", t.Year()),
		Month:  fmt.Sprintf("%02d", int(t.Month())),
		Day:    fmt.Sprintf("%02d", t.Day()),
		Hour:   fmt.Sprintf("%02d", t.Hour()),
		Minute: fmt.Sprintf("%02d", t.Minute()),
	}
}

// Now builds a Context for the current instant in loc
func Now(loc *time.Location) Context {
	return New(time.Now(), loc)
}

// LoadZone resolves a zone name, falling back to DefaultZone when empty
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", name, err)
	}
	return loc, nil
}

// Time returns the underlying instant
func (c Context) Time() time.Time {
	return c.t
}

// HourInt returns the hour of day in the context's zone
func (c Context) HourInt() int {
	return c.t.Hour()
}

// DateKey matches HROne calendar records, e.g. 2024-03-07T00:00:00
func (c Context) DateKey() string {
	return fmt.Sprintf("%s-%s-%sT00:00:00", c.Year, c.Month, c.Day)
}

// PunchKey is the punchTime sent with a punch request, e.g. 2024-03-07T08:01
func (c Context) PunchKey() string {
	return fmt.Sprintf("%s-%s-%sT%s:%s", c.Year, c.Month, c.Day, c.Hour, c.Minute)
}

// RawPunchDate is the date path segment of the raw punch endpoint, e.g. 2024-03-07
func (c Context) RawPunchDate() string {
	return fmt.Sprintf("%s-%s-%s", c.Year, c.Month, c.Day)
}
