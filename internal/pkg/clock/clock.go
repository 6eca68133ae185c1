package clock

import (
	"fmt"
	"time"
)

// DefaultTimezone is the civil time zone all business dates are derived in.
// The business does not observe DST, so a fixed UTC+3 offset is an
// acceptable fallback when tzdata is unavailable.
const DefaultTimezone = "Africa/Dar_es_Salaam"

const dateLayout = "2006-01-02"

// Date is a civil calendar date in the configured zone, formatted YYYY-MM-DD.
type Date string

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(t.Format(dateLayout)), nil
}

func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

func (d Date) String() string { return string(d) }

// AddDays returns the date shifted by the given number of calendar days.
func (d Date) AddDays(n int) Date {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return d
	}
	return Date(t.AddDate(0, 0, n).Format(dateLayout))
}

// TimeOfDay is a wall-clock time within a business day, stored as seconds
// since midnight. It is the unit of the shift window policy and of the
// TIME columns in the attendance ledger.
type TimeOfDay int

const timeLayout = "15:04:05"

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
}

// MustTimeOfDay parses a HH:MM:SS string and panics on error. For
// configuration defaults and policy tables built from literals.
func MustTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, int(t)%3600/60, int(t)%60)
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }

func (t TimeOfDay) Before(u TimeOfDay) bool { return t < u }
func (t TimeOfDay) After(u TimeOfDay) bool  { return t > u }

// Between reports whether t falls in [start, end], inclusive on both ends.
func (t TimeOfDay) Between(start, end TimeOfDay) bool {
	return t >= start && t <= end
}

// Clock resolves "now" in the configured business time zone. All day
// boundaries in the system derive from it; tests inject a fixed instant.
type Clock interface {
	Now() time.Time
	Today() Date
	BusinessDate(offsetDays int) Date
	Weekday() time.Weekday
	TimeOfDay() TimeOfDay
}

type zoneClock struct {
	loc *time.Location
}

// New returns a Clock for the named time zone. An unknown name falls back
// to a fixed UTC+3 offset rather than failing, matching the business zone.
func New(timezone string) Clock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.FixedZone("EAT", 3*3600)
	}
	return &zoneClock{loc: loc}
}

func (c *zoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *zoneClock) Today() Date {
	return DateOf(c.Now())
}

func (c *zoneClock) BusinessDate(offsetDays int) Date {
	return DateOf(c.Now().AddDate(0, 0, offsetDays))
}

func (c *zoneClock) Weekday() time.Weekday {
	return c.Now().Weekday()
}

func (c *zoneClock) TimeOfDay() TimeOfDay {
	return TimeOfDayOf(c.Now())
}

type fixedClock struct {
	t time.Time
}

// Fixed returns a Clock pinned to the given instant, for deterministic tests.
func Fixed(t time.Time) Clock {
	return &fixedClock{t: t}
}

func (c *fixedClock) Now() time.Time            { return c.t }
func (c *fixedClock) Today() Date               { return DateOf(c.t) }
func (c *fixedClock) BusinessDate(n int) Date   { return DateOf(c.t.AddDate(0, 0, n)) }
func (c *fixedClock) Weekday() time.Weekday     { return c.t.Weekday() }
func (c *fixedClock) TimeOfDay() TimeOfDay      { return TimeOfDayOf(c.t) }
