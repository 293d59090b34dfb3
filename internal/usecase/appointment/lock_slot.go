package appointment

import (
	"context"
	"strings"

	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/domain/loyalty"
	"github.com/BruksfildServices01/barber-loyalty/internal/events"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/metrics"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

type LockSlotInput struct {
	BarberID   uint
	Date       string
	StartTime  string
	UserName   string
	UserPhone  string
	ServiceIDs []uint
}

// LockSlot lets an admin hold a slot. With a name and phone it records a
// walk-in booking, otherwise a BLOCKED placeholder.
type LockSlot struct {
	repo     apdomain.Repository
	settings Settings
	fx       *Effects
}

func NewLockSlot(
	repo apdomain.Repository,
	settings Settings,
	fx *Effects,
) *LockSlot {
	return &LockSlot{
		repo:     repo,
		settings: settings,
		fx:       fx,
	}
}

func (uc *LockSlot) Execute(
	ctx context.Context,
	actor Actor,
	in LockSlotInput,
) (*models.Appointment, error) {

	start, err := timezone.ParseDateTime(in.Date, in.StartTime, uc.settings.Location)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}
	end := start.Add(uc.settings.Slot)

	walkIn := strings.TrimSpace(in.UserName) != "" && strings.TrimSpace(in.UserPhone) != ""

	var created *models.Appointment

	err = uc.repo.WithinTx(ctx, func(tx apdomain.Repository) error {
		if _, err := tx.GetBarber(ctx, in.BarberID); err != nil {
			return lookup(err, "barber_not_found")
		}

		if err := assertSlotFree(ctx, tx, uc.settings, in.BarberID, start, end, 0); err != nil {
			return err
		}

		ap := &models.Appointment{
			BarberID:    in.BarberID,
			StartTime:   start,
			EndTime:     end,
			Status:      string(apdomain.StatusBlocked),
			AdminViewed: true,
		}

		if walkIn {
			customer, err := resolveGuest(ctx, tx, in.UserName, in.UserPhone, "")
			if err != nil {
				return err
			}
			ap.UserID = &customer.ID
			ap.Status = string(apdomain.StatusBooked)

			if len(uniqueIDs(in.ServiceIDs)) > 0 {
				services, err := loadServices(ctx, tx, in.ServiceIDs)
				if err != nil {
					return err
				}
				ap.Services = services
				ap.TotalPrice = loyalty.Price(services, false)
			}
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

	metrics.Appointments.WithLabelValues("locked").Inc()
	uc.fx.record(actor.UserID, "slot_locked", ap, map[string]any{"walk_in": walkIn})
	uc.fx.publish(ctx, events.TypeLocked, ap, uc.settings.now())

	return ap, nil
}

// UnlockSlot removes the BLOCKED placeholder starting at the given time.
type UnlockSlot struct {
	repo     apdomain.Repository
	settings Settings
	fx       *Effects
}

func NewUnlockSlot(
	repo apdomain.Repository,
	settings Settings,
	fx *Effects,
) *UnlockSlot {
	return &UnlockSlot{
		repo:     repo,
		settings: settings,
		fx:       fx,
	}
}

func (uc *UnlockSlot) Execute(
	ctx context.Context,
	actor Actor,
	barberID uint,
	date string,
	startTime string,
) error {

	start, err := timezone.ParseDateTime(date, startTime, uc.settings.Location)
	if err != nil {
		return httperr.ErrBusiness("invalid_date_or_time")
	}

	var removed models.Appointment

	err = uc.repo.WithinTx(ctx, func(tx apdomain.Repository) error {
		busy, err := tx.ListActiveOverlapping(ctx, barberID, start, start.Add(uc.settings.Slot))
		if err != nil {
			return err
		}

		for _, ap := range busy {
			if ap.Status == string(apdomain.StatusBlocked) && ap.StartTime.Equal(start) {
				removed = ap
				return tx.DeleteAppointment(ctx, ap.ID)
			}
		}
		return httperr.ErrBusiness("appointment_not_found")
	})
	if err != nil {
		return err
	}

	uc.fx.record(actor.UserID, "slot_unlocked", &removed, nil)
	uc.fx.publish(ctx, events.TypeUnlocked, &removed, uc.settings.now())
	return nil
}
