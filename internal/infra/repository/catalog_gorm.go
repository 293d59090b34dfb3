package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-loyalty/internal/domain"
	catalogdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/catalog"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

type CatalogGormRepository struct {
	db *gorm.DB
}

func NewCatalogGormRepository(db *gorm.DB) *CatalogGormRepository {
	return &CatalogGormRepository{db: db}
}

// --------------------------------------------------
// Services
// --------------------------------------------------

func (r *CatalogGormRepository) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&services).Error
	return services, err
}

func (r *CatalogGormRepository) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *CatalogGormRepository) CreateService(ctx context.Context, s *models.Service) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return httperr.TranslateUnique(err)
	}
	return nil
}

func (r *CatalogGormRepository) SaveService(ctx context.Context, s *models.Service) error {
	if err := r.db.WithContext(ctx).Save(s).Error; err != nil {
		return httperr.TranslateUnique(err)
	}
	return nil
}

// DeleteService deactivates the service so past appointments keep it.
func (r *CatalogGormRepository) DeleteService(ctx context.Context, id uint) error {
	return deactivate(r.db.WithContext(ctx), &models.Service{}, id)
}

// --------------------------------------------------
// Barbers
// --------------------------------------------------

func (r *CatalogGormRepository) ListBarbers(ctx context.Context) ([]models.Barber, error) {
	var barbers []models.Barber
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&barbers).Error
	return barbers, err
}

func (r *CatalogGormRepository) GetBarber(ctx context.Context, id uint) (*models.Barber, error) {
	var b models.Barber
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *CatalogGormRepository) CreateBarber(ctx context.Context, b *models.Barber) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *CatalogGormRepository) SaveBarber(ctx context.Context, b *models.Barber) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *CatalogGormRepository) DeleteBarber(ctx context.Context, id uint) error {
	return deactivate(r.db.WithContext(ctx), &models.Barber{}, id)
}

// --------------------------------------------------
// Products
// --------------------------------------------------

func (r *CatalogGormRepository) ListProducts(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var products []models.Product
	err := q.Order("id ASC").Find(&products).Error
	return products, err
}

func (r *CatalogGormRepository) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *CatalogGormRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *CatalogGormRepository) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// --------------------------------------------------
// Working hours
// --------------------------------------------------

func (r *CatalogGormRepository) ListWorkingHours(ctx context.Context, barberID uint) ([]models.WorkingHours, error) {
	var hours []models.WorkingHours
	err := r.db.WithContext(ctx).
		Where("barber_id = ?", barberID).
		Order("weekday ASC").
		Find(&hours).Error
	return hours, err
}

func (r *CatalogGormRepository) ReplaceWorkingHours(
	ctx context.Context,
	barberID uint,
	hours []models.WorkingHours,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("barber_id = ?", barberID).Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}
		if len(hours) == 0 {
			return nil
		}
		return tx.Create(&hours).Error
	})
}

func deactivate(db *gorm.DB, model any, id uint) error {
	res := db.Model(model).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ catalogdomain.Repository = (*CatalogGormRepository)(nil)
