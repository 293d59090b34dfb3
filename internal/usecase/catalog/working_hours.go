package catalog

import (
	"context"
	"sort"

	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

func (c *Catalog) WorkingHours(ctx context.Context, barberID uint) ([]models.WorkingHours, error) {
	if _, err := c.GetBarber(ctx, barberID); err != nil {
		return nil, err
	}
	return c.repo.ListWorkingHours(ctx, barberID)
}

// SetWorkingHours replaces the weekly schedule of a barber. Weekdays
// left out fall back to the shop defaults.
func (c *Catalog) SetWorkingHours(
	ctx context.Context,
	actorID *uint,
	barberID uint,
	hours []models.WorkingHours,
) ([]models.WorkingHours, error) {

	if _, err := c.GetBarber(ctx, barberID); err != nil {
		return nil, err
	}

	seen := map[int]bool{}
	clean := make([]models.WorkingHours, 0, len(hours))

	for _, wh := range hours {
		if wh.Weekday < 0 || wh.Weekday > 6 || seen[wh.Weekday] {
			return nil, httperr.ErrBusiness("invalid_weekday")
		}
		seen[wh.Weekday] = true

		normalized, err := normalizeDay(wh)
		if err != nil {
			return nil, err
		}
		normalized.BarberID = barberID
		clean = append(clean, normalized)
	}

	sort.Slice(clean, func(i, j int) bool { return clean[i].Weekday < clean[j].Weekday })

	if err := c.repo.ReplaceWorkingHours(ctx, barberID, clean); err != nil {
		return nil, err
	}

	c.changed(ctx, actorID, "working_hours_updated", "barber", barberID)
	return c.repo.ListWorkingHours(ctx, barberID)
}

// normalizeDay stores clocks as HH:MM and checks lunch sits inside the
// opening hours. Inactive days keep whatever clocks were sent.
func normalizeDay(wh models.WorkingHours) (models.WorkingHours, error) {
	out := models.WorkingHours{
		Weekday: wh.Weekday,
		Active:  wh.Active,
	}
	if !wh.Active {
		return out, nil
	}

	var err error
	if out.StartTime, err = hhmm(wh.StartTime); err != nil || out.StartTime == "" {
		return out, httperr.ErrBusiness("invalid_time")
	}
	if out.EndTime, err = hhmm(wh.EndTime); err != nil || out.EndTime == "" {
		return out, httperr.ErrBusiness("invalid_time")
	}
	if out.LunchStart, err = hhmm(wh.LunchStart); err != nil {
		return out, httperr.ErrBusiness("invalid_time")
	}
	if out.LunchEnd, err = hhmm(wh.LunchEnd); err != nil {
		return out, httperr.ErrBusiness("invalid_time")
	}

	if out.StartTime >= out.EndTime {
		return out, httperr.ErrBusiness("invalid_time_range")
	}
	if (out.LunchStart == "") != (out.LunchEnd == "") {
		return out, httperr.ErrBusiness("invalid_time_range")
	}
	if out.LunchStart != "" &&
		(out.LunchStart >= out.LunchEnd || out.LunchStart < out.StartTime || out.LunchEnd > out.EndTime) {
		return out, httperr.ErrBusiness("invalid_time_range")
	}

	return out, nil
}

func hhmm(clock string) (string, error) {
	if clock == "" {
		return "", nil
	}
	normalized, err := timezone.ParseClock(clock)
	if err != nil {
		return "", err
	}
	return normalized[:5], nil
}
