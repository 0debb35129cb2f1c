package repo

import (
	"context"

	"gorm.io/gorm"

	"culfs/internal/domain"
)

type ArchiveRepo struct{ db *gorm.DB }

func NewArchiveRepo(db *gorm.DB) *ArchiveRepo { return &ArchiveRepo{db: db} }

func (r *ArchiveRepo) Create(ctx context.Context, a *domain.Archive) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ArchiveRepo) ListBySubject(ctx context.Context, subjectType, subjectID string) ([]domain.Archive, error) {
	out := make([]domain.Archive, 0)
	err := r.db.WithContext(ctx).Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("date DESC").Find(&out).Error
	return out, err
}
