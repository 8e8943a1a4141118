package caltime

import (
	"time"
	_ "time/tzdata"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns a clock reporting wall time in the clinic time zone.
func NewSystemClock(tz string) Clock {
	return systemClock{loc: Location(tz)}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

type fixedClock struct {
	now time.Time
}

// FixedClock always reports now. Useful in tests and simulations.
func FixedClock(now time.Time) Clock {
	return fixedClock{now: now}
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func Today(c Clock) Date {
	return DateOf(c.Now())
}

// IsPast reports whether d is strictly before today; today itself is not past.
func IsPast(d Date, c Clock) bool {
	return d.Before(Today(c))
}

// Location resolves tz, falling back to DefaultTimezone.
func Location(tz string) *time.Location {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
