package appointment

import (
	"context"
	"errors"
	"strings"

	"github.com/BruksfildServices01/barber-loyalty/internal/domain"
	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

// ListQuery carries the admin filter parameters as received.
type ListQuery struct {
	BarberID *uint
	Date     string
	Status   string
	Query    string
	Sort     string
}

// ListAppointments serves the admin and customer listings.
type ListAppointments struct {
	repo     apdomain.Repository
	settings Settings
}

func NewListAppointments(
	repo apdomain.Repository,
	settings Settings,
) *ListAppointments {
	return &ListAppointments{
		repo:     repo,
		settings: settings,
	}
}

func (uc *ListAppointments) All(ctx context.Context) ([]models.Appointment, error) {
	return uc.repo.ListAppointments(ctx, apdomain.Filter{Desc: true})
}

// Filter narrows by barber, day, status (comma separated) and customer
// name or contact. Sort "asc" lists oldest first.
func (uc *ListAppointments) Filter(
	ctx context.Context,
	q ListQuery,
) ([]models.Appointment, error) {

	f := apdomain.Filter{
		BarberID: q.BarberID,
		Query:    strings.TrimSpace(q.Query),
		Desc:     !strings.EqualFold(q.Sort, "asc"),
	}

	if q.Date != "" {
		day, err := timezone.ParseDate(q.Date, uc.settings.Location)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_date")
		}
		next := day.AddDate(0, 0, 1)
		f.From = &day
		f.To = &next
	}

	for _, raw := range strings.Split(q.Status, ",") {
		raw = strings.ToUpper(strings.TrimSpace(raw))
		if raw == "" {
			continue
		}
		if !apdomain.Status(raw).IsKnown() {
			return nil, httperr.ErrBusiness("invalid_status")
		}
		f.Statuses = append(f.Statuses, raw)
	}

	return uc.repo.ListAppointments(ctx, f)
}

// Mine lists the caller's appointments, upcoming first.
func (uc *ListAppointments) Mine(ctx context.Context, userID uint) ([]models.Appointment, error) {
	return uc.repo.ListAppointments(ctx, apdomain.Filter{UserID: &userID, Desc: true})
}

// ByContact lets a guest find bookings with the phone or email used.
func (uc *ListAppointments) ByContact(
	ctx context.Context,
	phone string,
	email string,
) ([]models.Appointment, error) {

	phone = strings.TrimSpace(phone)
	email = strings.ToLower(strings.TrimSpace(email))
	if phone == "" && email == "" {
		return nil, httperr.ErrBusiness("contact_required")
	}

	u, err := uc.repo.FindUserByContact(ctx, phone, email)
	if errors.Is(err, domain.ErrNotFound) {
		return []models.Appointment{}, nil
	}
	if err != nil {
		return nil, err
	}
	return uc.Mine(ctx, u.ID)
}

func (uc *ListAppointments) Get(ctx context.Context, id uint) (*models.Appointment, error) {
	ap, err := uc.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, lookup(err, "appointment_not_found")
	}
	return ap, nil
}

// CountNew counts BOOKED appointments no admin has opened yet.
func (uc *ListAppointments) CountNew(ctx context.Context) (int64, error) {
	return uc.repo.CountUnviewed(ctx)
}

func (uc *ListAppointments) MarkViewed(ctx context.Context, id uint) (*models.Appointment, error) {
	err := uc.repo.WithinTx(ctx, func(tx apdomain.Repository) error {
		ap, err := tx.GetAppointmentForUpdate(ctx, id)
		if err != nil {
			return lookup(err, "appointment_not_found")
		}
		if ap.AdminViewed {
			return nil
		}
		ap.AdminViewed = true
		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}
	return uc.repo.GetAppointment(ctx, id)
}
