package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"culfs/internal/domain"
)

type FoundItemRepo struct{ db *gorm.DB }

func NewFoundItemRepo(db *gorm.DB) *FoundItemRepo { return &FoundItemRepo{db: db} }

func (r *FoundItemRepo) Create(ctx context.Context, f *domain.FoundItem) error {
	return translate(r.db.WithContext(ctx).Create(f).Error, "found item", f.FoundItemID)
}

func (r *FoundItemRepo) Get(ctx context.Context, id string) (*domain.FoundItem, error) {
	var f domain.FoundItem
	if err := r.db.WithContext(ctx).First(&f, "found_item_id = ?", id).Error; err != nil {
		return nil, translate(err, "found item", id)
	}
	return &f, nil
}

func (r *FoundItemRepo) GetForUpdate(ctx context.Context, id string) (*domain.FoundItem, error) {
	var f domain.FoundItem
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&f, "found_item_id = ?", id).Error
	if err != nil {
		return nil, translate(err, "found item", id)
	}
	return &f, nil
}

func (r *FoundItemRepo) List(ctx context.Context, f domain.FoundItemFilter) ([]domain.FoundItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.FoundItem{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	items := make([]domain.FoundItem, 0)
	if err := q.Order("created_at DESC").Order("found_item_id DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Transition 条件更新，语义同 LostItemRepo.Transition
func (r *FoundItemRepo) Transition(ctx context.Context, id string, from, to domain.FoundStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).Model(&domain.FoundItem{}).
		Where("found_item_id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *FoundItemRepo) CountByStatus(ctx context.Context) (map[domain.FoundStatus]int64, error) {
	type row struct {
		Status domain.FoundStatus
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.FoundItem{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.FoundStatus]int64, len(rows))
	for _, x := range rows {
		out[x.Status] = x.N
	}
	return out, nil
}
