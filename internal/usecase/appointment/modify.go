package appointment

import (
	"context"

	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/events"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/metrics"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

// ModifyAppointment reschedules a booking: the old appointment is
// cancelled without refund and its reward moves to the new one.
type ModifyAppointment struct {
	repo     apdomain.Repository
	settings Settings
	fx       *Effects
}

func NewModifyAppointment(
	repo apdomain.Repository,
	settings Settings,
	fx *Effects,
) *ModifyAppointment {
	return &ModifyAppointment{
		repo:     repo,
		settings: settings,
		fx:       fx,
	}
}

func (uc *ModifyAppointment) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
	date string,
	startTime string,
) (*models.Appointment, error) {

	start, err := timezone.ParseDateTime(date, startTime, uc.settings.Location)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}
	end := start.Add(uc.settings.Slot)

	var created *models.Appointment

	err = uc.repo.WithinTx(ctx, func(tx apdomain.Repository) error {
		old, err := tx.GetAppointmentForUpdate(ctx, appointmentID)
		if err != nil {
			return lookup(err, "appointment_not_found")
		}

		if err := authorizeOwner(ctx, tx, old, actor); err != nil {
			return err
		}
		if err := apdomain.CanReschedule(apdomain.Status(old.Status)); err != nil {
			return err
		}
		if err := assertSlotFree(ctx, tx, uc.settings, old.BarberID, start, end, old.ID); err != nil {
			return err
		}

		next := apdomain.Reschedule(old, start, end)

		// the reward now belongs to next; clearing it keeps a later delete
		// of old from refunding twice
		apdomain.Cancel(old, uc.settings.now())
		old.RewardApplied = false

		if err := tx.UpdateAppointment(ctx, old); err != nil {
			return err
		}
		if err := tx.CreateAppointment(ctx, next); err != nil {
			return err
		}

		created = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointment(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	metrics.Appointments.WithLabelValues("rescheduled").Inc()
	uc.fx.record(actor.UserID, "appointment_rescheduled", ap, map[string]any{
		"previous_id": appointmentID,
	})
	uc.fx.publish(ctx, events.TypeRescheduled, ap, uc.settings.now())
	uc.fx.cancelReminder(ctx, appointmentID)
	uc.fx.scheduleReminder(ctx, ap)
	uc.fx.notifyAdmins(ctx, "Appointment modified", ap)

	return ap, nil
}
