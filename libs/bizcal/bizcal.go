// Package bizcal converts between the business's wall clock and UTC instants.
//
// A booking date is a calendar day in the business time zone, never a UTC
// instant. Opening hours are resolved against the zone offset in effect on
// that particular date, so DST transitions move the UTC window by an hour.
package bizcal

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const dateLayout = "2006-01-02"

// Date is a calendar day with no time zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) Equal(o Date) bool {
	return d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses YYYY-MM-DD. Out of range days such as 2026-02-30 are rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

type Calendar struct {
	loc *time.Location
}

func New(tz string) (*Calendar, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", tz, err)
	}
	return &Calendar{loc: loc}, nil
}

// Fixed wraps an existing location, mostly for tests.
func Fixed(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc}
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// At returns the UTC instant of the wall-clock time hour:minute on d.
func (c *Calendar) At(d Date, hour, minute int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, c.loc).UTC()
}

// Window returns the UTC instants for openHour and closeHour on d.
func (c *Calendar) Window(d Date, openHour, closeHour int) (time.Time, time.Time) {
	return c.At(d, openHour, 0), c.At(d, closeHour, 0)
}

// DayBounds returns [start of d, start of the next day) as UTC instants.
// The span is 23 or 25 hours on DST transition days.
func (c *Calendar) DayBounds(d Date) (time.Time, time.Time) {
	return c.At(d, 0, 0), c.At(d.AddDays(1), 0, 0)
}

// DateOf returns the business-local calendar day containing instant t.
func (c *Calendar) DateOf(t time.Time) Date {
	local := t.In(c.loc)
	return Date{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

func (c *Calendar) Today(now time.Time) Date {
	return c.DateOf(now)
}

// Offset returns the zone's UTC offset at noon local time on d.
func (c *Calendar) Offset(d Date) time.Duration {
	_, secs := time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, c.loc).Zone()
	return time.Duration(secs) * time.Second
}
