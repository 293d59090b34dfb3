package appointment

import (
	"context"

	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/events"
	"github.com/BruksfildServices01/barber-loyalty/internal/metrics"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

// DeleteAppointment removes an appointment for good. An unused reward
// goes back to the customer; completed and cancelled ones were already
// settled.
type DeleteAppointment struct {
	repo     apdomain.Repository
	settings Settings
	fx       *Effects
}

func NewDeleteAppointment(
	repo apdomain.Repository,
	settings Settings,
	fx *Effects,
) *DeleteAppointment {
	return &DeleteAppointment{
		repo:     repo,
		settings: settings,
		fx:       fx,
	}
}

func (uc *DeleteAppointment) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
) error {

	var (
		removed  models.Appointment
		refunded bool
	)

	err := uc.repo.WithinTx(ctx, func(tx apdomain.Repository) error {
		ap, err := tx.GetAppointmentForUpdate(ctx, appointmentID)
		if err != nil {
			return lookup(err, "appointment_not_found")
		}

		status := apdomain.Status(ap.Status)
		settled := status == apdomain.StatusDone || status == apdomain.StatusCancelled

		if ap.RewardApplied && !settled && ap.UserID != nil {
			customer, err := tx.GetUserForUpdate(ctx, *ap.UserID)
			if err != nil {
				return lookup(err, "user_not_found")
			}
			uc.settings.Policy.Refund(customer)
			if err := tx.SaveUser(ctx, customer); err != nil {
				return err
			}
			refunded = true
		}

		removed = *ap
		return tx.DeleteAppointment(ctx, ap.ID)
	})
	if err != nil {
		return err
	}

	metrics.Appointments.WithLabelValues("deleted").Inc()
	if refunded {
		metrics.Rewards.WithLabelValues(metrics.RewardRefunded).Inc()
	}

	uc.fx.record(actor.UserID, "appointment_deleted", &removed, map[string]any{
		"reward_refunded": refunded,
	})
	uc.fx.publish(ctx, events.TypeDeleted, &removed, uc.settings.now())
	uc.fx.cancelReminder(ctx, removed.ID)

	return nil
}
