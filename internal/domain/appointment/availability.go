package appointment

import (
	"time"

	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WorkingDay is one barber's schedule for a weekday, clocks as HH:MM.
type WorkingDay struct {
	Active     bool
	Start      string
	End        string
	LunchStart string
	LunchEnd   string
}

// DefaultWorkingDay applies when a barber has no configured hours:
// Monday 12:00-18:00, every other day 10:00-21:00.
func DefaultWorkingDay(weekday time.Weekday) WorkingDay {
	if weekday == time.Monday {
		return WorkingDay{Active: true, Start: "12:00", End: "18:00"}
	}
	return WorkingDay{Active: true, Start: "10:00", End: "21:00"}
}

func WorkingDayFrom(wh *models.WorkingHours) WorkingDay {
	return WorkingDay{
		Active:     wh.Active && wh.StartTime != "" && wh.EndTime != "",
		Start:      wh.StartTime,
		End:        wh.EndTime,
		LunchStart: wh.LunchStart,
		LunchEnd:   wh.LunchEnd,
	}
}

func (wd WorkingDay) HasLunch() bool {
	return wd.LunchStart != "" && wd.LunchEnd != ""
}

// Interval is a half-open [Start, End) range.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Overlaps(start, end time.Time) bool {
	return start.Before(i.End) && end.After(i.Start)
}

// On places an HH:MM or HH:MM:SS clock on day's calendar date.
func On(day time.Time, clock string) (time.Time, error) {
	normalized, err := timezone.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	t, _ := time.Parse(timezone.ClockLayout, normalized)
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		t.Hour(), t.Minute(), t.Second(), 0,
		day.Location(),
	), nil
}

// FreeSlots lists the slot starts (HH:MM:SS) of day that fit the working
// day, avoid lunch and busy intervals, and start at or after notBefore.
func FreeSlots(
	day time.Time,
	wd WorkingDay,
	busy []Interval,
	slot time.Duration,
	notBefore time.Time,
) []string {

	slots := []string{}
	if !wd.Active || slot <= 0 {
		return slots
	}

	dayStart, err := On(day, wd.Start)
	if err != nil {
		return slots
	}
	dayEnd, err := On(day, wd.End)
	if err != nil {
		return slots
	}

	var lunch *Interval
	if wd.HasLunch() {
		ls, err1 := On(day, wd.LunchStart)
		le, err2 := On(day, wd.LunchEnd)
		if err1 == nil && err2 == nil {
			lunch = &Interval{Start: ls, End: le}
		}
	}

	for cur := dayStart; !cur.Add(slot).After(dayEnd); cur = cur.Add(slot) {
		end := cur.Add(slot)

		if cur.Before(notBefore) {
			continue
		}
		if lunch != nil && lunch.Overlaps(cur, end) {
			continue
		}

		taken := false
		for _, b := range busy {
			if b.Overlaps(cur, end) {
				taken = true
				break
			}
		}
		if !taken {
			slots = append(slots, cur.Format(timezone.ClockLayout))
		}
	}

	return slots
}
