package appointment

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-loyalty/internal/audit"
	"github.com/BruksfildServices01/barber-loyalty/internal/domain"
	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/domain/loyalty"
	"github.com/BruksfildServices01/barber-loyalty/internal/events"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/push"
	"github.com/BruksfildServices01/barber-loyalty/internal/tasks"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

// ======================================================
// SETTINGS
// ======================================================

type Settings struct {
	Location *time.Location
	Slot     time.Duration
	Policy   loyalty.Policy
	Now      func() time.Time
}

func (s Settings) now() time.Time {
	if s.Now != nil {
		return s.Now().In(s.Location)
	}
	return time.Now().In(s.Location)
}

// ======================================================
// SIDE EFFECTS (after commit, never fail the request)
// ======================================================

type Effects struct {
	Audit     *audit.Dispatcher
	Events    events.Publisher
	Reminders tasks.Scheduler
	Push      push.Notifier
	Log       *zap.Logger
}

const pushTimeout = 15 * time.Second

func (fx *Effects) logger() *zap.Logger {
	if fx == nil || fx.Log == nil {
		return zap.NewNop()
	}
	return fx.Log
}

func (fx *Effects) record(actorID *uint, action string, ap *models.Appointment, meta any) {
	if fx == nil {
		return
	}
	fx.Audit.Dispatch(audit.Event{
		UserID:   actorID,
		Action:   action,
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: meta,
	})
}

func (fx *Effects) publish(ctx context.Context, typ string, ap *models.Appointment, now time.Time) {
	if fx == nil || fx.Events == nil {
		return
	}
	fx.Events.Publish(ctx, events.Event{
		Type:          typ,
		AppointmentID: ap.ID,
		BarberID:      ap.BarberID,
		Status:        ap.Status,
		Date:          ap.StartTime.Format(timezone.DateLayout),
		StartTime:     ap.StartTime.Format(timezone.ClockLayout),
		At:            now,
	})
}

func (fx *Effects) scheduleReminder(ctx context.Context, ap *models.Appointment) {
	if fx == nil || fx.Reminders == nil || ap.User == nil {
		return
	}

	names := make([]string, 0, len(ap.Services))
	for _, s := range ap.Services {
		names = append(names, s.Name)
	}

	err := fx.Reminders.ScheduleReminder(ctx, tasks.ReminderPayload{
		AppointmentID: ap.ID,
		Email:         ap.User.Email,
		Name:          ap.User.Name,
		BarberName:    ap.Barber.Name,
		Services:      names,
		StartAt:       ap.StartTime,
	})
	if err != nil {
		fx.logger().Warn("schedule reminder", zap.Uint("appointment_id", ap.ID), zap.Error(err))
	}
}

func (fx *Effects) cancelReminder(ctx context.Context, appointmentID uint) {
	if fx == nil || fx.Reminders == nil {
		return
	}
	if err := fx.Reminders.CancelReminder(ctx, appointmentID); err != nil {
		fx.logger().Warn("cancel reminder", zap.Uint("appointment_id", appointmentID), zap.Error(err))
	}
}

// notifyAdmins pushes a summary of ap to the admins' browsers without
// holding up the response.
func (fx *Effects) notifyAdmins(ctx context.Context, title string, ap *models.Appointment) {
	if fx == nil || fx.Push == nil {
		return
	}

	msg := push.Message{Title: title, Body: describe(ap)}
	ctx = context.WithoutCancel(ctx)

	go func() {
		ctx, cancel := context.WithTimeout(ctx, pushTimeout)
		defer cancel()
		fx.Push.NotifyAdmins(ctx, msg)
	}()
}

func describe(ap *models.Appointment) string {
	customer := "A guest"
	if ap.User != nil && ap.User.Name != "" {
		customer = ap.User.Name
	}

	names := make([]string, 0, len(ap.Services))
	for _, s := range ap.Services {
		names = append(names, s.Name)
	}

	return fmt.Sprintf("%s booked %s (Total %.2f DT) with %s on %s at %s",
		customer,
		strings.Join(names, ", "),
		ap.TotalPrice,
		ap.Barber.Name,
		ap.StartTime.Format(timezone.DateLayout),
		ap.StartTime.Format(timezone.ClockLayout),
	)
}

// ======================================================
// HELPERS
// ======================================================

// lookup maps a missing row to the business code for that entity.
func lookup(err error, code string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return httperr.ErrBusiness(code)
	}
	return err
}

func uniqueIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != 0 && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func loadServices(ctx context.Context, repo apdomain.Repository, ids []uint) ([]models.Service, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, httperr.ErrBusiness("services_required")
	}

	services, err := repo.GetServices(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(services) != len(ids) {
		return nil, httperr.ErrBusiness("service_not_found")
	}
	for _, s := range services {
		if !s.Active {
			return nil, httperr.ErrBusiness("service_not_found")
		}
	}
	return services, nil
}

// resolveGuest finds the customer by phone, then email, or registers a
// guest account. The returned user is locked for the transaction.
func resolveGuest(
	ctx context.Context,
	repo apdomain.Repository,
	name, phone, email string,
) (*models.User, error) {

	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	email = strings.ToLower(strings.TrimSpace(email))

	if phone == "" && email == "" {
		return nil, httperr.ErrBusiness("contact_required")
	}

	found, err := repo.FindUserByContact(ctx, phone, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if found == nil {
		guest := &models.User{
			Name:  name,
			Phone: phone,
			Email: email,
			Role:  models.RoleClient,
		}
		if err := repo.CreateUser(ctx, guest); err != nil {
			return nil, err
		}
		return guest, nil
	}

	u, err := repo.GetUserForUpdate(ctx, found.ID)
	if err != nil {
		return nil, err
	}

	if fillContact(u, name, phone, email) {
		if err := repo.SaveUser(ctx, u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// fillContact completes blank contact fields and reports a change.
func fillContact(u *models.User, name, phone, email string) bool {
	changed := false
	if u.Name == "" && name != "" {
		u.Name = name
		changed = true
	}
	if u.Phone == "" && phone != "" {
		u.Phone = phone
		changed = true
	}
	if u.Email == "" && email != "" {
		u.Email = email
		changed = true
	}
	return changed
}

func assertSlotFree(
	ctx context.Context,
	repo apdomain.Repository,
	s Settings,
	barberID uint,
	start, end time.Time,
	excludeID uint,
) error {

	busy, err := repo.ListActiveOverlapping(ctx, barberID, start, end)
	if err != nil {
		return err
	}

	day := start.Format(timezone.DateLayout)
	blocks, err := repo.ListBlockedSlots(ctx, day, day)
	if err != nil {
		return err
	}

	return apdomain.AssertSlotFree(barberID, start, end, busy, blocks, s.Slot, excludeID)
}

// authorizeOwner lets admins and the owner through. Guests prove
// ownership with the phone or email they booked with.
func authorizeOwner(
	ctx context.Context,
	repo apdomain.Repository,
	ap *models.Appointment,
	actor Actor,
) error {

	if actor.IsAdmin() {
		return nil
	}
	if actor.UserID != nil && apdomain.IsOwnedBy(ap, *actor.UserID) {
		return nil
	}
	if ap.UserID == nil || (actor.Phone == "" && actor.Email == "") {
		return httperr.ErrBusiness("forbidden")
	}

	owner, err := repo.GetUserForUpdate(ctx, *ap.UserID)
	if err != nil {
		return lookup(err, "forbidden")
	}

	phone := strings.TrimSpace(actor.Phone)
	email := strings.ToLower(strings.TrimSpace(actor.Email))
	if (phone != "" && phone == owner.Phone) ||
		(email != "" && email == strings.ToLower(owner.Email)) {
		return nil
	}
	return httperr.ErrBusiness("forbidden")
}

// Actor is the caller of an operation; contact fields identify guests.
type Actor struct {
	UserID *uint
	Role   string
	Phone  string
	Email  string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}
