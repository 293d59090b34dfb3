package user

import (
	"context"

	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

type Repository interface {
	GetByID(
		ctx context.Context,
		id uint,
	) (*models.User, error)

	GetByUsername(
		ctx context.Context,
		username string,
	) (*models.User, error)

	// FindByContact matches on phone first, then email.
	FindByContact(
		ctx context.Context,
		phone string,
		email string,
	) (*models.User, error)

	Create(
		ctx context.Context,
		u *models.User,
	) error

	Save(
		ctx context.Context,
		u *models.User,
	) error
}
