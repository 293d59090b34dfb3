package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

type PushGormRepository struct {
	db *gorm.DB
}

func NewPushGormRepository(db *gorm.DB) *PushGormRepository {
	return &PushGormRepository{db: db}
}

func (r *PushGormRepository) SavePushSubscription(ctx context.Context, sub *models.PushSubscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "user_id", "barber_id", "updated_at"}),
		}).
		Create(sub).Error
}

func (r *PushGormRepository) DeletePushSubscription(ctx context.Context, endpoint string, userID *uint) error {
	q := r.db.WithContext(ctx).Where("endpoint = ?", endpoint)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	return q.Delete(&models.PushSubscription{}).Error
}

func (r *PushGormRepository) ListAdminPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = push_subscriptions.user_id").
		Where("users.role = ?", models.RoleAdmin).
		Order("push_subscriptions.id").
		Find(&subs).Error
	return subs, err
}
