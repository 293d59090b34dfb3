package catalog

import (
	"context"

	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

type Repository interface {
	// -------- Services --------
	ListServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, id uint) (*models.Service, error)
	CreateService(ctx context.Context, s *models.Service) error
	SaveService(ctx context.Context, s *models.Service) error
	DeleteService(ctx context.Context, id uint) error

	// -------- Barbers --------
	ListBarbers(ctx context.Context) ([]models.Barber, error)
	GetBarber(ctx context.Context, id uint) (*models.Barber, error)
	CreateBarber(ctx context.Context, b *models.Barber) error
	SaveBarber(ctx context.Context, b *models.Barber) error
	DeleteBarber(ctx context.Context, id uint) error

	// -------- Products --------
	ListProducts(ctx context.Context, activeOnly bool) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	SaveProduct(ctx context.Context, p *models.Product) error

	// -------- Working hours --------
	ListWorkingHours(ctx context.Context, barberID uint) ([]models.WorkingHours, error)
	ReplaceWorkingHours(ctx context.Context, barberID uint, hours []models.WorkingHours) error
}
