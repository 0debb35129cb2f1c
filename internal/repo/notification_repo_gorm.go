package repo

import (
	"context"

	"gorm.io/gorm"

	"culfs/internal/domain"
)

type NotificationRepo struct{ db *gorm.DB }

func NewNotificationRepo(db *gorm.DB) *NotificationRepo { return &NotificationRepo{db: db} }

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListByUser 新的在前；同一时刻的按 ID（UUIDv7，随写入递增）倒序
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	out := make([]domain.Notification, 0)
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return out, q.Find(&out).Error
}
