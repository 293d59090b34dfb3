package appointment

import (
	"context"

	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/domain/loyalty"
	"github.com/BruksfildServices01/barber-loyalty/internal/events"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/metrics"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type BookInput struct {
	Actor Actor

	BarberID   uint
	ServiceIDs []uint

	Date      string
	StartTime string

	UserName  string
	UserPhone string
	UserEmail string

	UseReward bool
	Notes     string
}

// ======================================================
// USE CASE
// ======================================================

type BookAppointment struct {
	repo     apdomain.Repository
	settings Settings
	fx       *Effects
}

func NewBookAppointment(
	repo apdomain.Repository,
	settings Settings,
	fx *Effects,
) *BookAppointment {
	return &BookAppointment{
		repo:     repo,
		settings: settings,
		fx:       fx,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Date / time in the shop timezone
	// --------------------------------------------------
	start, err := timezone.ParseDateTime(in.Date, in.StartTime, uc.settings.Location)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}
	end := start.Add(uc.settings.Slot)

	var created *models.Appointment

	err = uc.repo.WithinTx(ctx, func(tx apdomain.Repository) error {

		// --------------------------------------------------
		// 2. Barber and services
		// --------------------------------------------------
		if _, err := tx.GetBarber(ctx, in.BarberID); err != nil {
			return lookup(err, "barber_not_found")
		}

		services, err := loadServices(ctx, tx, in.ServiceIDs)
		if err != nil {
			return err
		}

		// --------------------------------------------------
		// 3. Customer: members book for themselves, admins and
		//    anonymous callers for a guest
		// --------------------------------------------------
		var customer *models.User
		if in.Actor.UserID != nil && !in.Actor.IsAdmin() {
			customer, err = tx.GetUserForUpdate(ctx, *in.Actor.UserID)
			if err != nil {
				return lookup(err, "user_not_found")
			}
		} else {
			customer, err = resolveGuest(ctx, tx, in.UserName, in.UserPhone, in.UserEmail)
			if err != nil {
				return err
			}
		}

		// --------------------------------------------------
		// 4. Conflicts
		// --------------------------------------------------
		if err := assertSlotFree(ctx, tx, uc.settings, in.BarberID, start, end, 0); err != nil {
			return err
		}

		// --------------------------------------------------
		// 5. Reward redemption
		// --------------------------------------------------
		if in.UseReward {
			if _, ok := loyalty.QualifyingService(services); !ok {
				return httperr.ErrBusiness("reward_not_applicable")
			}
			if err := uc.settings.Policy.Redeem(customer); err != nil {
				return err
			}
			if err := tx.SaveUser(ctx, customer); err != nil {
				return err
			}
		}

		// --------------------------------------------------
		// 6. Appointment
		// --------------------------------------------------
		ap := &models.Appointment{
			UserID:        &customer.ID,
			BarberID:      in.BarberID,
			Services:      services,
			StartTime:     start,
			EndTime:       end,
			Status:        string(apdomain.InitialStatus()),
			RewardApplied: in.UseReward,
			TotalPrice:    loyalty.Price(services, in.UseReward),
			Notes:         in.Notes,
		}
		if err := tx.CreateAppointment(ctx, ap); err != nil {
			return err
		}

		created = ap
		return nil
	})
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointment(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 7. Side effects
	// --------------------------------------------------
	metrics.Appointments.WithLabelValues("booked").Inc()
	if ap.RewardApplied {
		metrics.Rewards.WithLabelValues(metrics.RewardRedeemed).Inc()
	}

	uc.fx.record(in.Actor.UserID, "appointment_booked", ap, map[string]any{
		"reward_applied": ap.RewardApplied,
		"total_price":    ap.TotalPrice,
	})
	uc.fx.publish(ctx, events.TypeBooked, ap, uc.settings.now())
	uc.fx.scheduleReminder(ctx, ap)
	uc.fx.notifyAdmins(ctx, "New appointment", ap)

	return ap, nil
}
