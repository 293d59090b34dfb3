package appointment

import (
	"context"

	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/events"
	"github.com/BruksfildServices01/barber-loyalty/internal/metrics"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

type CancelAppointment struct {
	repo     apdomain.Repository
	settings Settings
	fx       *Effects
}

func NewCancelAppointment(
	repo apdomain.Repository,
	settings Settings,
	fx *Effects,
) *CancelAppointment {
	return &CancelAppointment{
		repo:     repo,
		settings: settings,
		fx:       fx,
	}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
) (*models.Appointment, error) {

	var outcome cancelOutcome

	err := uc.repo.WithinTx(ctx, func(tx apdomain.Repository) error {
		ap, err := tx.GetAppointmentForUpdate(ctx, appointmentID)
		if err != nil {
			return lookup(err, "appointment_not_found")
		}

		if err := authorizeOwner(ctx, tx, ap, actor); err != nil {
			return err
		}
		if err := apdomain.CanCancel(apdomain.Status(ap.Status), actor.IsAdmin()); err != nil {
			return err
		}

		outcome, err = cancelWithinTx(ctx, tx, uc.settings, ap)
		return err
	})
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	outcome.report()
	uc.fx.record(actor.UserID, "appointment_cancelled", ap, map[string]any{
		"reward_refunded": outcome.refunded,
		"accrual_revoked": outcome.reversed,
	})
	uc.fx.publish(ctx, events.TypeCancelled, ap, uc.settings.now())
	uc.fx.cancelReminder(ctx, ap.ID)

	return ap, nil
}

type cancelOutcome struct {
	refunded bool
	reversed bool
	revoked  bool
}

func (o cancelOutcome) report() {
	metrics.Appointments.WithLabelValues("cancelled").Inc()
	if o.refunded {
		metrics.Rewards.WithLabelValues(metrics.RewardRefunded).Inc()
	}
	if o.revoked {
		metrics.Rewards.WithLabelValues(metrics.RewardRevoked).Inc()
	}
}

// cancelWithinTx refunds a consumed reward, reverses the accrual of a
// completed appointment and marks ap cancelled. The refund runs first so
// a reward it returns can cover the reversal.
func cancelWithinTx(
	ctx context.Context,
	tx apdomain.Repository,
	s Settings,
	ap *models.Appointment,
) (cancelOutcome, error) {

	var out cancelOutcome
	wasDone := apdomain.Status(ap.Status) == apdomain.StatusDone

	if ap.UserID != nil && (ap.RewardApplied || wasDone) {
		customer, err := tx.GetUserForUpdate(ctx, *ap.UserID)
		if err != nil {
			return out, lookup(err, "user_not_found")
		}

		if ap.RewardApplied {
			s.Policy.Refund(customer)
			out.refunded = true
		}
		if wasDone {
			out.revoked, err = s.Policy.Reverse(customer)
			if err != nil {
				return out, err
			}
			out.reversed = true
		}

		if err := tx.SaveUser(ctx, customer); err != nil {
			return out, err
		}
	}

	apdomain.Cancel(ap, s.now())
	return out, tx.UpdateAppointment(ctx, ap)
}
