package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	userdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/user"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) GetByID(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserGormRepository) GetByUsername(
	ctx context.Context,
	username string,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserGormRepository) FindByContact(
	ctx context.Context,
	phone string,
	email string,
) (*models.User, error) {
	return findUserByContact(r.db.WithContext(ctx), phone, email)
}

func (r *UserGormRepository) Create(
	ctx context.Context,
	u *models.User,
) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return httperr.TranslateUnique(err)
	}
	return nil
}

func (r *UserGormRepository) Save(
	ctx context.Context,
	u *models.User,
) error {
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		return httperr.TranslateUnique(err)
	}
	return nil
}

var _ userdomain.Repository = (*UserGormRepository)(nil)
