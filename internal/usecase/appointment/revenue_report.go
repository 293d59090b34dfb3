package appointment

import (
	"context"

	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

type RevenueReport struct {
	repo     apdomain.Repository
	settings Settings
}

func NewRevenueReport(repo apdomain.Repository, settings Settings) *RevenueReport {
	return &RevenueReport{repo: repo, settings: settings}
}

// Execute reports the Monday to Sunday week containing date, or the
// current week when date is empty.
func (uc *RevenueReport) Execute(
	ctx context.Context,
	barberID uint,
	date string,
) (*apdomain.RevenueReport, error) {

	ref := uc.settings.now()
	if date != "" {
		d, err := timezone.ParseDate(date, uc.settings.Location)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_date")
		}
		ref = d
	}

	if _, err := uc.repo.GetBarber(ctx, barberID); err != nil {
		return nil, lookup(err, "barber_not_found")
	}

	weekStart := timezone.StartOfWeek(ref)
	weekEnd := weekStart.AddDate(0, 0, 7)

	done, err := uc.repo.ListAppointments(ctx, apdomain.Filter{
		BarberID: &barberID,
		From:     &weekStart,
		To:       &weekEnd,
		Statuses: []string{string(apdomain.StatusDone)},
	})
	if err != nil {
		return nil, err
	}

	report := apdomain.BuildRevenueReport(barberID, weekStart, done)
	return &report, nil
}
