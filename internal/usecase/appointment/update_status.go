package appointment

import (
	"context"

	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/events"
	"github.com/BruksfildServices01/barber-loyalty/internal/metrics"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

// UpdateStatus is the admin transition endpoint. Completing accrues
// loyalty, leaving DONE reverses it, cancelling refunds.
type UpdateStatus struct {
	repo     apdomain.Repository
	settings Settings
	fx       *Effects
}

func NewUpdateStatus(
	repo apdomain.Repository,
	settings Settings,
	fx *Effects,
) *UpdateStatus {
	return &UpdateStatus{
		repo:     repo,
		settings: settings,
		fx:       fx,
	}
}

func (uc *UpdateStatus) Execute(
	ctx context.Context,
	actor Actor,
	appointmentID uint,
	rawStatus string,
) (*models.Appointment, error) {

	target, err := apdomain.ParseTarget(rawStatus)
	if err != nil {
		return nil, err
	}

	var (
		from    apdomain.Status
		granted bool
		revoked bool
		cancel  cancelOutcome
		changed bool
	)

	err = uc.repo.WithinTx(ctx, func(tx apdomain.Repository) error {
		ap, err := tx.GetAppointmentForUpdate(ctx, appointmentID)
		if err != nil {
			return lookup(err, "appointment_not_found")
		}

		from = apdomain.Status(ap.Status)
		if err := apdomain.CanTransition(from, target); err != nil {
			return err
		}
		if from == target {
			return nil
		}
		changed = true

		if target == apdomain.StatusCancelled {
			cancel, err = cancelWithinTx(ctx, tx, uc.settings, ap)
			return err
		}

		var customer *models.User
		if ap.UserID != nil {
			customer, err = tx.GetUserForUpdate(ctx, *ap.UserID)
			if err != nil {
				return lookup(err, "user_not_found")
			}
		}

		switch {
		case target == apdomain.StatusDone:
			apdomain.Complete(ap, uc.settings.now())
			if customer != nil {
				granted = uc.settings.Policy.Accrue(customer)
			}
		case from == apdomain.StatusDone:
			if customer != nil {
				revoked, err = uc.settings.Policy.Reverse(customer)
				if err != nil {
					return err
				}
			}
			apdomain.Reopen(ap, target)
		default:
			ap.Status = string(target)
		}

		if customer != nil {
			if err := tx.SaveUser(ctx, customer); err != nil {
				return err
			}
		}
		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return ap, nil
	}

	switch target {
	case apdomain.StatusCancelled:
		cancel.report()
		uc.fx.cancelReminder(ctx, ap.ID)
	case apdomain.StatusDone:
		metrics.Appointments.WithLabelValues("completed").Inc()
		uc.fx.cancelReminder(ctx, ap.ID)
	default:
		metrics.Appointments.WithLabelValues("reopened").Inc()
	}
	if granted {
		metrics.Rewards.WithLabelValues(metrics.RewardGranted).Inc()
	}
	if revoked {
		metrics.Rewards.WithLabelValues(metrics.RewardRevoked).Inc()
	}

	uc.fx.record(actor.UserID, "appointment_status_changed", ap, map[string]any{
		"from":           string(from),
		"to":             string(target),
		"reward_granted": granted,
	})
	uc.fx.publish(ctx, events.TypeStatus, ap, uc.settings.now())

	return ap, nil
}
