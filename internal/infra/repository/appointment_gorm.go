package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/barber-loyalty/internal/domain"
	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func (r *AppointmentGormRepository) WithinTx(
	ctx context.Context,
	fn func(tx apdomain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Customer
// --------------------------------------------------

func (r *AppointmentGormRepository) GetUserForUpdate(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *AppointmentGormRepository) FindUserByContact(
	ctx context.Context,
	phone string,
	email string,
) (*models.User, error) {
	return findUserByContact(r.db.WithContext(ctx), phone, email)
}

func (r *AppointmentGormRepository) CreateUser(
	ctx context.Context,
	u *models.User,
) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return httperr.TranslateUnique(err)
	}
	return nil
}

func (r *AppointmentGormRepository) SaveUser(
	ctx context.Context,
	u *models.User,
) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBarber(
	ctx context.Context,
	id uint,
) (*models.Barber, error) {

	var b models.Barber
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *AppointmentGormRepository) GetServices(
	ctx context.Context,
	ids []uint,
) ([]models.Service, error) {

	var services []models.Service
	if len(ids) == 0 {
		return services, nil
	}

	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	err := r.db.WithContext(ctx).
		Omit("User", "Barber").
		Create(ap).Error
	return httperr.TranslateConflict(err)
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Barber").
		Preload("Services").
		First(&ap, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) GetAppointmentForUpdate(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ap, id).Error; err != nil {
		return nil, notFound(err)
	}

	// locked separately: FOR UPDATE is not valid on the preload queries
	if err := r.db.WithContext(ctx).
		Model(&ap).
		Association("Services").
		Find(&ap.Services); err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(ap).Error
	return httperr.TranslateConflict(err)
}

func (r *AppointmentGormRepository) DeleteAppointment(
	ctx context.Context,
	id uint,
) error {

	res := r.db.WithContext(ctx).
		Select("Services").
		Delete(&models.Appointment{ID: id})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AppointmentGormRepository) ListActiveOverlapping(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {
	q := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	return activeBetween(q, barberID, start, end)
}

func (r *AppointmentGormRepository) ListActive(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {
	return activeBetween(r.db.WithContext(ctx), barberID, start, end)
}

func activeBetween(q *gorm.DB, barberID uint, start, end time.Time) ([]models.Appointment, error) {
	var apps []models.Appointment
	if err := q.
		Where(
			"barber_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			barberID,
			apdomain.ActiveStatusStrings(),
			end,
			start,
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	f apdomain.Filter,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Preload("User").
		Preload("Barber").
		Preload("Services")

	if f.BarberID != nil {
		q = q.Where("appointments.barber_id = ?", *f.BarberID)
	}
	if f.UserID != nil {
		q = q.Where("appointments.user_id = ?", *f.UserID)
	}
	if f.From != nil {
		q = q.Where("appointments.start_time >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("appointments.start_time < ?", *f.To)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("appointments.status IN ?", f.Statuses)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Query)); term != "" {
		like := "%" + term + "%"
		q = q.
			Joins("LEFT JOIN users ON users.id = appointments.user_id").
			Where(
				"LOWER(users.name) LIKE ? OR users.phone LIKE ? OR LOWER(users.email) LIKE ?",
				like, like, like,
			)
	}

	order := "appointments.start_time ASC"
	if f.Desc {
		order = "appointments.start_time DESC"
	}
	q = q.Order(order)

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var apps []models.Appointment
	if err := q.Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) CountUnviewed(
	ctx context.Context,
) (int64, error) {

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("status = ? AND admin_viewed = ?", string(apdomain.StatusBooked), false).
		Count(&count).Error
	return count, err
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) GetWorkingHours(
	ctx context.Context,
	barberID uint,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("barber_id = ? AND weekday = ?", barberID, weekday).
		First(&wh).Error; err != nil {
		return nil, notFound(err)
	}

	return &wh, nil
}

func (r *AppointmentGormRepository) ListBlockedSlots(
	ctx context.Context,
	fromDay string,
	toDay string,
) ([]models.BlockedSlot, error) {

	var blocks []models.BlockedSlot
	if err := r.db.WithContext(ctx).
		Where("day >= ? AND day <= ?", fromDay, toDay).
		Order("day ASC, start_time ASC").
		Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *AppointmentGormRepository) CreateBlockedSlot(
	ctx context.Context,
	b *models.BlockedSlot,
) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *AppointmentGormRepository) DeleteBlockedSlot(
	ctx context.Context,
	id uint,
) error {

	res := r.db.WithContext(ctx).Delete(&models.BlockedSlot{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func findUserByContact(db *gorm.DB, phone, email string) (*models.User, error) {
	phone = strings.TrimSpace(phone)
	email = strings.ToLower(strings.TrimSpace(email))

	var u models.User
	if phone != "" {
		err := db.Where("phone = ?", phone).Order("id ASC").First(&u).Error
		if err == nil {
			return &u, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if email != "" {
		err := db.Where("LOWER(email) = ?", email).Order("id ASC").First(&u).Error
		if err == nil {
			return &u, nil
		}
		return nil, notFound(err)
	}

	return nil, domain.ErrNotFound
}

// Compile-time check
var _ apdomain.Repository = (*AppointmentGormRepository)(nil)
