package timezone

import "time"

const DefaultTimezone = "America/Sao_Paulo"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location falls back to DefaultTimezone, then UTC.
func Location(tz string) *time.Location {
	if loc, err := time.LoadLocation(tz); tz != "" && err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

// Clock yields the current time in the business timezone. Tests pin it.
type Clock func() time.Time

func NewClock(tz string) Clock {
	loc := Location(tz)
	return func() time.Time { return time.Now().In(loc) }
}

// Fixed returns a clock stuck at t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// Today formats the current date as YYYY-MM-DD.
func (c Clock) Today() string {
	return c().Format(time.DateOnly)
}
