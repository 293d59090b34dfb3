package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/imaging"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

const photoQuality = 80

// UploadBarberPhoto converts the upload to WebP, stores it and points
// the barber at the new URL. The previous photo is removed afterwards.
func (c *Catalog) UploadBarberPhoto(
	ctx context.Context,
	actorID *uint,
	barberID uint,
	data []byte,
) (*models.Barber, error) {

	if c.uploader == nil {
		return nil, httperr.ErrBusiness("storage_disabled")
	}

	b, err := c.GetBarber(ctx, barberID)
	if err != nil {
		return nil, err
	}

	// 1. normalize
	webp, err := imaging.ToWebP(data, imaging.DefaultMaxSide, photoQuality)
	if errors.Is(err, imaging.ErrUnsupported) {
		return nil, httperr.ErrBusiness("invalid_image")
	}
	if err != nil {
		return nil, err
	}

	// 2. upload
	key := fmt.Sprintf("barbers/%d/%s.webp", b.ID, uuid.NewString())
	url, err := c.uploader.Put(ctx, key, webp, imaging.ContentType)
	if err != nil {
		return nil, err
	}

	// 3. swap
	previous := b.Photo
	b.Photo = url
	if err := c.repo.SaveBarber(ctx, b); err != nil {
		return nil, err
	}

	if oldKey, ok := c.uploader.KeyFromURL(previous); ok {
		if err := c.uploader.Delete(ctx, oldKey); err != nil {
			c.log.Warn("delete previous photo", zap.String("key", oldKey), zap.Error(err))
		}
	}

	c.changed(ctx, actorID, "barber_photo_updated", "barber", b.ID, keyBarbers)
	return b, nil
}
