package repo

import (
	"context"

	"gorm.io/gorm"

	"culfs/internal/domain"
)

type OfficeRepo struct{ db *gorm.DB }

func NewOfficeRepo(db *gorm.DB) *OfficeRepo { return &OfficeRepo{db: db} }

func (r *OfficeRepo) Get(ctx context.Context, id string) (*domain.Office, error) {
	var o domain.Office
	if err := r.db.WithContext(ctx).First(&o, "office_id = ?", id).Error; err != nil {
		return nil, translate(err, "office", id)
	}
	return &o, nil
}

func (r *OfficeRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Office{}).Where("office_id = ?", id).Count(&n).Error
	return n > 0, err
}
