package catalog

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-loyalty/internal/cache"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/infra/memory"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

type fakeUploader struct {
	objects map[string][]byte
	deleted []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string][]byte{}}
}

func (f *fakeUploader) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	f.objects[key] = body
	return "https://cdn.test/" + key, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, "https://cdn.test/") {
		return "", false
	}
	return strings.TrimPrefix(url, "https://cdn.test/"), true
}

func newCatalog(uploader *fakeUploader) (*Catalog, *memory.Store) {
	store := memory.NewStore()
	deps := Deps{Cache: cache.NewMemory(time.Minute)}
	if uploader != nil {
		deps.Uploader = uploader
	}
	return New(store, deps), store
}

func TestServicesAreCachedAndInvalidated(t *testing.T) {
	ctx := context.Background()
	c, store := newCatalog(nil)

	_, err := c.CreateService(ctx, nil, ServiceInput{Name: "Coupe", Price: 10, DurationMin: 30})
	require.NoError(t, err)

	list, err := c.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// written behind the catalog's back: the cached list is served
	require.NoError(t, store.CreateService(ctx, &models.Service{Name: "Barbe", Price: 7, Active: true}))
	list, err = c.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = c.CreateService(ctx, nil, ServiceInput{Name: "Soin", Price: 20, DurationMin: 30})
	require.NoError(t, err)
	list, err = c.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	require.NoError(t, c.DeleteService(ctx, nil, list[0].ID))
	list, err = c.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.True(t, httperr.IsBusiness(c.DeleteService(ctx, nil, 999), "service_not_found"))
}

func TestServiceValidation(t *testing.T) {
	ctx := context.Background()
	c, _ := newCatalog(nil)

	_, err := c.CreateService(ctx, nil, ServiceInput{Name: "  "})
	assert.True(t, httperr.IsBusiness(err, "name_required"))

	_, err = c.CreateService(ctx, nil, ServiceInput{Name: "Coupe", Price: -1})
	assert.True(t, httperr.IsBusiness(err, "invalid_price"))

	_, err = c.CreateService(ctx, nil, ServiceInput{Name: "Coupe", Price: 10})
	require.NoError(t, err)
	_, err = c.CreateService(ctx, nil, ServiceInput{Name: "Coupe", Price: 12})
	assert.True(t, httperr.IsBusiness(err, "name_taken"))

	_, err = c.UpdateService(ctx, nil, 999, ServiceInput{Name: "X"})
	assert.True(t, httperr.IsBusiness(err, "service_not_found"))
}

func TestBarberCRUD(t *testing.T) {
	ctx := context.Background()
	c, _ := newCatalog(nil)

	b, err := c.CreateBarber(ctx, nil, BarberInput{Name: "Aladin", Speciality: "Dégradé"})
	require.NoError(t, err)
	assert.True(t, b.Active)

	b, err = c.UpdateBarber(ctx, nil, b.ID, BarberInput{Name: "Aladin B.", Speciality: "Barbe"})
	require.NoError(t, err)
	assert.Equal(t, "Barbe", b.Speciality)

	list, err := c.ListBarbers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Aladin B.", list[0].Name)

	require.NoError(t, c.DeleteBarber(ctx, nil, b.ID))
	list, err = c.ListBarbers(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProducts(t *testing.T) {
	ctx := context.Background()
	c, _ := newCatalog(nil)

	p, err := c.CreateProduct(ctx, nil, models.Product{Name: "Cire LORENTI", Price: 15, Category: "styling"})
	require.NoError(t, err)

	off := false
	price := 18.0
	p, err = c.UpdateProduct(ctx, nil, p.ID, ProductPatch{Active: &off, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 18.0, p.Price)
	assert.Equal(t, "Cire LORENTI", p.Name)

	active, err := c.ListProducts(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := c.ListProducts(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = c.UpdateProduct(ctx, nil, 999, ProductPatch{})
	assert.True(t, httperr.IsBusiness(err, "product_not_found"))
}

func TestWorkingHours(t *testing.T) {
	ctx := context.Background()
	c, _ := newCatalog(nil)

	b, err := c.CreateBarber(ctx, nil, BarberInput{Name: "Hamouda"})
	require.NoError(t, err)

	saved, err := c.SetWorkingHours(ctx, nil, b.ID, []models.WorkingHours{
		{Weekday: 2, StartTime: "09:00:00", EndTime: "18:00", LunchStart: "12:00", LunchEnd: "13:00", Active: true},
		{Weekday: 0, Active: false},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, 0, saved[0].Weekday)
	assert.Equal(t, "09:00", saved[1].StartTime)

	_, err = c.SetWorkingHours(ctx, nil, b.ID, []models.WorkingHours{
		{Weekday: 1, StartTime: "18:00", EndTime: "09:00", Active: true},
	})
	assert.True(t, httperr.IsBusiness(err, "invalid_time_range"))

	_, err = c.SetWorkingHours(ctx, nil, b.ID, []models.WorkingHours{
		{Weekday: 1, StartTime: "09:00", EndTime: "18:00", LunchStart: "08:00", LunchEnd: "09:30", Active: true},
	})
	assert.True(t, httperr.IsBusiness(err, "invalid_time_range"))

	_, err = c.SetWorkingHours(ctx, nil, b.ID, []models.WorkingHours{{Weekday: 7}})
	assert.True(t, httperr.IsBusiness(err, "invalid_weekday"))

	_, err = c.SetWorkingHours(ctx, nil, b.ID, []models.WorkingHours{{Weekday: 1}, {Weekday: 1}})
	assert.True(t, httperr.IsBusiness(err, "invalid_weekday"))

	_, err = c.WorkingHours(ctx, 999)
	assert.True(t, httperr.IsBusiness(err, "barber_not_found"))
}

func TestUploadBarberPhoto(t *testing.T) {
	ctx := context.Background()

	disabled, _ := newCatalog(nil)
	_, err := disabled.UploadBarberPhoto(ctx, nil, 1, nil)
	assert.True(t, httperr.IsBusiness(err, "storage_disabled"))

	uploader := newFakeUploader()
	c, _ := newCatalog(uploader)

	b, err := c.CreateBarber(ctx, nil, BarberInput{Name: "Ahmed"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 40))))

	first, err := c.UploadBarberPhoto(ctx, nil, b.ID, buf.Bytes())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(first.Photo, ".webp"))
	assert.Len(t, uploader.objects, 1)

	second, err := c.UploadBarberPhoto(ctx, nil, b.ID, buf.Bytes())
	require.NoError(t, err)
	assert.NotEqual(t, first.Photo, second.Photo)
	assert.Len(t, uploader.objects, 1)
	assert.Len(t, uploader.deleted, 1)

	_, err = c.UploadBarberPhoto(ctx, nil, b.ID, []byte("nope"))
	assert.True(t, httperr.IsBusiness(err, "invalid_image"))
}
