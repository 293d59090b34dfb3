package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-loyalty/internal/audit"
	"github.com/BruksfildServices01/barber-loyalty/internal/cache"
	"github.com/BruksfildServices01/barber-loyalty/internal/domain"
	catalogdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/catalog"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/metrics"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
	"github.com/BruksfildServices01/barber-loyalty/internal/storage"
)

const (
	keyServices = "catalog:services"
	keyBarbers  = "catalog:barbers"
	keyProducts = "catalog:products"
)

// Catalog serves services, barbers, products and working hours. Public
// lists are read through the cache and invalidated on every write.
type Catalog struct {
	repo     catalogdomain.Repository
	cache    cache.Cache
	ttl      time.Duration
	uploader storage.Uploader
	audit    *audit.Dispatcher
	log      *zap.Logger
}

type Deps struct {
	Cache    cache.Cache
	TTL      time.Duration
	Uploader storage.Uploader
	Audit    *audit.Dispatcher
	Log      *zap.Logger
}

func New(repo catalogdomain.Repository, deps Deps) *Catalog {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.TTL <= 0 {
		deps.TTL = 5 * time.Minute
	}
	return &Catalog{
		repo:     repo,
		cache:    deps.Cache,
		ttl:      deps.TTL,
		uploader: deps.Uploader,
		audit:    deps.Audit,
		log:      deps.Log,
	}
}

// ======================================================
// SERVICES
// ======================================================

type ServiceInput struct {
	Name        string
	Description string
	Price       float64
	DurationMin int
}

func (in ServiceInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return httperr.ErrBusiness("name_required")
	}
	if in.Price < 0 {
		return httperr.ErrBusiness("invalid_price")
	}
	if in.DurationMin < 0 {
		return httperr.ErrBusiness("invalid_duration")
	}
	return nil
}

func (c *Catalog) ListServices(ctx context.Context) ([]models.Service, error) {
	return cached(ctx, c, keyServices, c.repo.ListServices)
}

func (c *Catalog) GetService(ctx context.Context, id uint) (*models.Service, error) {
	s, err := c.repo.GetService(ctx, id)
	if err != nil {
		return nil, notFound(err, "service_not_found")
	}
	return s, nil
}

func (c *Catalog) CreateService(ctx context.Context, actorID *uint, in ServiceInput) (*models.Service, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s := &models.Service{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		DurationMin: in.DurationMin,
		Active:      true,
	}
	if err := c.repo.CreateService(ctx, s); err != nil {
		return nil, httperr.TranslateUnique(err)
	}

	c.changed(ctx, actorID, "service_created", "service", s.ID, keyServices)
	return s, nil
}

func (c *Catalog) UpdateService(ctx context.Context, actorID *uint, id uint, in ServiceInput) (*models.Service, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s, err := c.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Name = strings.TrimSpace(in.Name)
	s.Description = in.Description
	s.Price = in.Price
	s.DurationMin = in.DurationMin

	if err := c.repo.SaveService(ctx, s); err != nil {
		return nil, httperr.TranslateUnique(err)
	}

	c.changed(ctx, actorID, "service_updated", "service", s.ID, keyServices)
	return s, nil
}

// DeleteService retires a service; past appointments keep referencing it.
func (c *Catalog) DeleteService(ctx context.Context, actorID *uint, id uint) error {
	if err := c.repo.DeleteService(ctx, id); err != nil {
		return notFound(err, "service_not_found")
	}
	c.changed(ctx, actorID, "service_deleted", "service", id, keyServices)
	return nil
}

// ======================================================
// BARBERS
// ======================================================

type BarberInput struct {
	Name        string
	Speciality  string
	Description string
	UserID      *uint
}

func (c *Catalog) ListBarbers(ctx context.Context) ([]models.Barber, error) {
	return cached(ctx, c, keyBarbers, c.repo.ListBarbers)
}

func (c *Catalog) GetBarber(ctx context.Context, id uint) (*models.Barber, error) {
	b, err := c.repo.GetBarber(ctx, id)
	if err != nil {
		return nil, notFound(err, "barber_not_found")
	}
	return b, nil
}

func (c *Catalog) CreateBarber(ctx context.Context, actorID *uint, in BarberInput) (*models.Barber, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, httperr.ErrBusiness("name_required")
	}

	b := &models.Barber{
		Name:        strings.TrimSpace(in.Name),
		Speciality:  in.Speciality,
		Description: in.Description,
		UserID:      in.UserID,
		Active:      true,
	}
	if err := c.repo.CreateBarber(ctx, b); err != nil {
		return nil, err
	}

	c.changed(ctx, actorID, "barber_created", "barber", b.ID, keyBarbers)
	return b, nil
}

func (c *Catalog) UpdateBarber(ctx context.Context, actorID *uint, id uint, in BarberInput) (*models.Barber, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, httperr.ErrBusiness("name_required")
	}

	b, err := c.GetBarber(ctx, id)
	if err != nil {
		return nil, err
	}

	b.Name = strings.TrimSpace(in.Name)
	b.Speciality = in.Speciality
	b.Description = in.Description
	b.UserID = in.UserID

	if err := c.repo.SaveBarber(ctx, b); err != nil {
		return nil, err
	}

	c.changed(ctx, actorID, "barber_updated", "barber", b.ID, keyBarbers)
	return b, nil
}

func (c *Catalog) DeleteBarber(ctx context.Context, actorID *uint, id uint) error {
	if err := c.repo.DeleteBarber(ctx, id); err != nil {
		return notFound(err, "barber_not_found")
	}
	c.changed(ctx, actorID, "barber_deleted", "barber", id, keyBarbers)
	return nil
}

// ======================================================
// PRODUCTS
// ======================================================

// ProductPatch updates only the fields that are set.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Image       *string
	Active      *bool
	Category    *string
}

func (c *Catalog) ListProducts(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	if includeInactive {
		return c.repo.ListProducts(ctx, false)
	}
	return cached(ctx, c, keyProducts, func(ctx context.Context) ([]models.Product, error) {
		return c.repo.ListProducts(ctx, true)
	})
}

func (c *Catalog) CreateProduct(ctx context.Context, actorID *uint, p models.Product) (*models.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, httperr.ErrBusiness("name_required")
	}
	if p.Price < 0 {
		return nil, httperr.ErrBusiness("invalid_price")
	}

	p.ID = 0
	p.Active = true
	if err := c.repo.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}

	c.changed(ctx, actorID, "product_created", "product", p.ID, keyProducts)
	return &p, nil
}

func (c *Catalog) UpdateProduct(ctx context.Context, actorID *uint, id uint, patch ProductPatch) (*models.Product, error) {
	p, err := c.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product_not_found")
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, httperr.ErrBusiness("name_required")
		}
		p.Name = name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, httperr.ErrBusiness("invalid_price")
		}
		p.Price = *patch.Price
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}

	if err := c.repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}

	c.changed(ctx, actorID, "product_updated", "product", p.ID, keyProducts)
	return p, nil
}

// ======================================================
// HELPERS
// ======================================================

// cached reads key from the cache or loads and stores it. Cache failures
// fall through to the repository.
func cached[T any](
	ctx context.Context,
	c *Catalog,
	key string,
	load func(context.Context) ([]T, error),
) ([]T, error) {

	if c.cache != nil {
		var out []T
		hit, err := c.cache.Get(ctx, key, &out)
		switch {
		case err != nil:
			c.log.Warn("cache read", zap.String("key", key), zap.Error(err))
		case hit:
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return out, nil
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, out, c.ttl); err != nil {
			c.log.Warn("cache write", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

func (c *Catalog) changed(ctx context.Context, actorID *uint, action, entity string, id uint, keys ...string) {
	if c.cache != nil {
		if err := c.cache.Delete(ctx, keys...); err != nil {
			c.log.Warn("cache invalidate", zap.Strings("keys", keys), zap.Error(err))
		}
	}

	c.audit.Dispatch(audit.Event{
		UserID:   actorID,
		Action:   action,
		Entity:   entity,
		EntityID: &id,
	})
}

func notFound(err error, code string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return httperr.ErrBusiness(code)
	}
	return err
}
