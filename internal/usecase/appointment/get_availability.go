package appointment

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/barber-loyalty/internal/domain"
	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

type GetAvailability struct {
	repo     apdomain.Repository
	settings Settings
}

func NewGetAvailability(repo apdomain.Repository, settings Settings) *GetAvailability {
	return &GetAvailability{repo: repo, settings: settings}
}

// Execute lists the free slot starts of barberID on date.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	barberID uint,
	date string,
) ([]string, error) {

	day, err := timezone.ParseDate(date, uc.settings.Location)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	if _, err := uc.repo.GetBarber(ctx, barberID); err != nil {
		return nil, lookup(err, "barber_not_found")
	}

	// 1. working day
	wd := apdomain.DefaultWorkingDay(day.Weekday())
	wh, err := uc.repo.GetWorkingHours(ctx, barberID, int(day.Weekday()))
	switch {
	case err == nil:
		wd = apdomain.WorkingDayFrom(wh)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	if !wd.Active {
		return []string{}, nil
	}

	// 2. busy intervals
	busy, err := uc.repo.ListActive(ctx, barberID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	blocks, err := uc.repo.ListBlockedSlots(ctx, date, date)
	if err != nil {
		return nil, err
	}

	intervals := apdomain.BusyIntervals(barberID, busy, blocks, uc.settings.Location, uc.settings.Slot)

	// 3. free slots from now on
	return apdomain.FreeSlots(day, wd, intervals, uc.settings.Slot, uc.settings.now()), nil
}
