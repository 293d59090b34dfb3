package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

// Filter narrows appointment listings; zero fields are ignored.
type Filter struct {
	BarberID *uint
	UserID   *uint
	From     *time.Time
	To       *time.Time
	Statuses []string
	Query    string
	Desc     bool
	Limit    int
}

type Repository interface {
	// WithinTx runs fn against a repository bound to one transaction.
	WithinTx(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// -------- Customer --------
	GetUserForUpdate(
		ctx context.Context,
		id uint,
	) (*models.User, error)

	FindUserByContact(
		ctx context.Context,
		phone string,
		email string,
	) (*models.User, error)

	CreateUser(
		ctx context.Context,
		u *models.User,
	) error

	SaveUser(
		ctx context.Context,
		u *models.User,
	) error

	// -------- Catalog --------
	GetBarber(
		ctx context.Context,
		id uint,
	) (*models.Barber, error)

	GetServices(
		ctx context.Context,
		ids []uint,
	) ([]models.Service, error)

	// -------- Appointment --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	GetAppointmentForUpdate(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	DeleteAppointment(
		ctx context.Context,
		id uint,
	) error

	// ListActiveOverlapping locks the active appointments of barberID
	// overlapping [start, end).
	ListActiveOverlapping(
		ctx context.Context,
		barberID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// ListActive is ListActiveOverlapping without row locks, for reads
	// outside a transaction.
	ListActive(
		ctx context.Context,
		barberID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	ListAppointments(
		ctx context.Context,
		f Filter,
	) ([]models.Appointment, error)

	CountUnviewed(
		ctx context.Context,
	) (int64, error)

	// -------- Availability --------
	GetWorkingHours(
		ctx context.Context,
		barberID uint,
		weekday int,
	) (*models.WorkingHours, error)

	ListBlockedSlots(
		ctx context.Context,
		fromDay string,
		toDay string,
	) ([]models.BlockedSlot, error)

	CreateBlockedSlot(
		ctx context.Context,
		b *models.BlockedSlot,
	) error

	DeleteBlockedSlot(
		ctx context.Context,
		id uint,
	) error
}
