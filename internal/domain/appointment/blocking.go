package appointment

import (
	"time"

	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

// BlockAppliesTo reports whether b closes barberID's calendar.
func BlockAppliesTo(b models.BlockedSlot, barberID uint) bool {
	return b.BarberID == nil || *b.BarberID == barberID
}

// BlockInterval resolves b to the range it closes: the whole day without
// a start time, one slot without an end time.
func BlockInterval(b models.BlockedSlot, loc *time.Location, slot time.Duration) (Interval, error) {
	day, err := timezone.ParseDate(b.Day, loc)
	if err != nil {
		return Interval{}, err
	}

	if b.StartTime == "" {
		return Interval{Start: day, End: day.AddDate(0, 0, 1)}, nil
	}

	start, err := On(day, b.StartTime)
	if err != nil {
		return Interval{}, err
	}

	if b.EndTime == "" {
		return Interval{Start: start, End: start.Add(slot)}, nil
	}

	end, err := On(day, b.EndTime)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end}, nil
}

// ValidateBlock checks the clocks of a blocked slot before it is stored.
func ValidateBlock(b models.BlockedSlot, loc *time.Location, slot time.Duration) error {
	if _, err := timezone.ParseDate(b.Day, loc); err != nil {
		return httperr.ErrBusiness("invalid_date")
	}
	if b.StartTime == "" && b.EndTime != "" {
		return httperr.ErrBusiness("invalid_time_range")
	}

	iv, err := BlockInterval(b, loc, slot)
	if err != nil {
		return httperr.ErrBusiness("invalid_time")
	}
	if !iv.End.After(iv.Start) {
		return httperr.ErrBusiness("invalid_time_range")
	}
	return nil
}

// AssertSlotFree returns the business error for the first appointment or
// block overlapping [start, end) on barberID's calendar. excludeID skips
// the appointment being rescheduled.
func AssertSlotFree(
	barberID uint,
	start, end time.Time,
	appointments []models.Appointment,
	blocks []models.BlockedSlot,
	slot time.Duration,
	excludeID uint,
) error {

	for _, ap := range appointments {
		if ap.ID == excludeID || ap.BarberID != barberID || !Status(ap.Status).IsActive() {
			continue
		}
		if (Interval{Start: ap.StartTime, End: ap.EndTime}).Overlaps(start, end) {
			return httperr.ErrBusiness("time_conflict")
		}
	}

	for _, b := range blocks {
		if !BlockAppliesTo(b, barberID) {
			continue
		}
		iv, err := BlockInterval(b, start.Location(), slot)
		if err != nil {
			continue
		}
		if iv.Overlaps(start, end) {
			return httperr.ErrBusiness("slot_blocked")
		}
	}

	return nil
}

// BusyIntervals merges active appointments and applicable blocks into the
// ranges unavailable to barberID.
func BusyIntervals(
	barberID uint,
	appointments []models.Appointment,
	blocks []models.BlockedSlot,
	loc *time.Location,
	slot time.Duration,
) []Interval {

	out := make([]Interval, 0, len(appointments)+len(blocks))
	for _, ap := range appointments {
		if ap.BarberID == barberID && Status(ap.Status).IsActive() {
			out = append(out, Interval{Start: ap.StartTime, End: ap.EndTime})
		}
	}
	for _, b := range blocks {
		if !BlockAppliesTo(b, barberID) {
			continue
		}
		if iv, err := BlockInterval(b, loc, slot); err == nil {
			out = append(out, iv)
		}
	}
	return out
}
