package appointment

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/barber-loyalty/internal/audit"
	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

// BlockedSlots manages admin closures of the calendar.
type BlockedSlots struct {
	repo     apdomain.Repository
	settings Settings
	fx       *Effects
}

func NewBlockedSlots(
	repo apdomain.Repository,
	settings Settings,
	fx *Effects,
) *BlockedSlots {
	return &BlockedSlots{
		repo:     repo,
		settings: settings,
		fx:       fx,
	}
}

func (uc *BlockedSlots) Create(
	ctx context.Context,
	actor Actor,
	b models.BlockedSlot,
) (*models.BlockedSlot, error) {

	b.Day = strings.TrimSpace(b.Day)
	if b.StartTime != "" {
		clock, err := timezone.ParseClock(b.StartTime)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_time")
		}
		b.StartTime = clock[:5]
	}
	if b.EndTime != "" {
		clock, err := timezone.ParseClock(b.EndTime)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_time")
		}
		b.EndTime = clock[:5]
	}

	if err := apdomain.ValidateBlock(b, uc.settings.Location, uc.settings.Slot); err != nil {
		return nil, err
	}

	if b.BarberID != nil {
		if _, err := uc.repo.GetBarber(ctx, *b.BarberID); err != nil {
			return nil, lookup(err, "barber_not_found")
		}
	}

	if err := uc.repo.CreateBlockedSlot(ctx, &b); err != nil {
		return nil, err
	}

	if uc.fx != nil {
		uc.fx.Audit.Dispatch(audit.Event{
			UserID:   actor.UserID,
			Action:   "blocked_slot_created",
			Entity:   "blocked_slot",
			EntityID: &b.ID,
			Metadata: b,
		})
	}
	return &b, nil
}

// List returns blocks from fromDay (today when empty) for the next
// thirty days unless toDay is given.
func (uc *BlockedSlots) List(
	ctx context.Context,
	fromDay string,
	toDay string,
) ([]models.BlockedSlot, error) {

	from := uc.settings.now()
	if fromDay != "" {
		d, err := timezone.ParseDate(fromDay, uc.settings.Location)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_date")
		}
		from = d
	}

	to := from.AddDate(0, 0, 30)
	if toDay != "" {
		d, err := timezone.ParseDate(toDay, uc.settings.Location)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_date")
		}
		to = d
	}

	return uc.repo.ListBlockedSlots(ctx,
		from.Format(timezone.DateLayout),
		to.Format(timezone.DateLayout),
	)
}

func (uc *BlockedSlots) Delete(
	ctx context.Context,
	actor Actor,
	id uint,
) error {

	if err := uc.repo.DeleteBlockedSlot(ctx, id); err != nil {
		return lookup(err, "blocked_slot_not_found")
	}

	if uc.fx != nil {
		uc.fx.Audit.Dispatch(audit.Event{
			UserID:   actor.UserID,
			Action:   "blocked_slot_deleted",
			Entity:   "blocked_slot",
			EntityID: &id,
		})
	}
	return nil
}
