package timezone

import (
	"strings"
	"time"
)

const DefaultTimezone = "Africa/Tunis"

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
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

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// ParseDate parses YYYY-MM-DD as midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
}

// ParseClock normalizes HH:MM or HH:MM:SS to HH:MM:SS.
func ParseClock(clock string) (string, error) {
	clock = strings.TrimSpace(clock)
	layout := ClockLayout
	if len(clock) == len("15:04") {
		layout = "15:04"
	}

	t, err := time.Parse(layout, clock)
	if err != nil {
		return "", err
	}
	return t.Format(ClockLayout), nil
}

// ParseDateTime combines a date and a clock value in loc.
func ParseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	normalized, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(
		DateLayout+" "+ClockLayout,
		strings.TrimSpace(date)+" "+normalized,
		loc,
	)
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Monday midnight of t's week.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
