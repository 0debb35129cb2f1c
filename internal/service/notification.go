package service

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"culfs/internal/domain"
	"culfs/internal/repo"
	"culfs/pkg/utils"
)

type NotificationService struct{ *base }

// GetNotifications 最新的在前
func (s *NotificationService) GetNotifications(ctx context.Context, actor domain.Session, userID string, limit int) ([]domain.Notification, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}
	return s.store.Notifications.ListByUser(ctx, userID, clampLimit(limit))
}

// appendNotification 追加一条通知；在调用方事务内执行
func appendNotification(ctx context.Context, tx *repo.Store, at time.Time, userID, caseNumber string,
	typ domain.NotificationType, msg string, meta map[string]any) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:         utils.NewOrderedID(),
		UserID:     userID,
		CaseNumber: caseNumber,
		Type:       typ,
		Message:    msg,
		Date:       at,
	}
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return nil, err
		}
		n.Metadata = datatypes.JSON(b)
	}
	if err := tx.Notifications.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}
