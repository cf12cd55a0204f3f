package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/errors"
)

// Clock returns the current instant. Tests substitute a fixed clock.
type Clock func() time.Time

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errors.Invalidf("unknown timezone %q", timezone)
	}
	return loc, nil
}

// DayOf returns the calendar day of t, observed in t's own location, as
// midnight UTC. Every day value handled by the calculator has this shape.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TodayIn returns today's calendar day as observed in loc
func TodayIn(clock Clock, loc *time.Location) time.Time {
	if clock == nil {
		clock = time.Now
	}
	return DayOf(clock().In(loc))
}

// ParseDay parses a YYYY-MM-DD string into a calendar day.
// The keyword "today" resolves against the given reference day.
func ParseDay(s string, today time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "today":
		if today.IsZero() {
			return time.Time{}, errors.Invalidf("no reference day for %q", s)
		}
		return DayOf(today), nil
	case "yesterday":
		if today.IsZero() {
			return time.Time{}, errors.Invalidf("no reference day for %q", s)
		}
		return DayOf(today).AddDate(0, 0, -1), nil
	}

	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, errors.Invalidf("day %q is not in YYYY-MM-DD format", s)
	}
	return t, nil
}

// MustParseDay is ParseDay for literals known to be valid
func MustParseDay(s string) time.Time {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		panic(fmt.Sprintf("utils: bad day literal %q: %v", s, err))
	}
	return t
}

// FormatDay renders a calendar day as YYYY-MM-DD
func FormatDay(day time.Time) string {
	return day.Format(constants.DateFormat)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}
