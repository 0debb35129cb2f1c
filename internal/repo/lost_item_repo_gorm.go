package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"culfs/internal/domain"
)

type LostItemRepo struct{ db *gorm.DB }

func NewLostItemRepo(db *gorm.DB) *LostItemRepo { return &LostItemRepo{db: db} }

func (r *LostItemRepo) Create(ctx context.Context, l *domain.LostItem) error {
	return translate(r.db.WithContext(ctx).Create(l).Error, "lost item", l.CaseNumber)
}

func (r *LostItemRepo) Get(ctx context.Context, caseNumber string) (*domain.LostItem, error) {
	var l domain.LostItem
	if err := r.db.WithContext(ctx).First(&l, "case_number = ?", caseNumber).Error; err != nil {
		return nil, translate(err, "lost item", caseNumber)
	}
	return &l, nil
}

// GetForUpdate 事务内加行锁读取（sqlite 方言忽略 FOR UPDATE）
func (r *LostItemRepo) GetForUpdate(ctx context.Context, caseNumber string) (*domain.LostItem, error) {
	var l domain.LostItem
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "case_number = ?", caseNumber).Error
	if err != nil {
		return nil, translate(err, "lost item", caseNumber)
	}
	return &l, nil
}

func (r *LostItemRepo) List(ctx context.Context, f domain.LostItemFilter) ([]domain.LostItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.LostItem{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
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
	items := make([]domain.LostItem, 0)
	if err := q.Order("date_reported DESC").Order("case_number DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByStatus 给匹配候选使用
func (r *LostItemRepo) ListByStatus(ctx context.Context, statuses ...domain.LostStatus) ([]domain.LostItem, error) {
	items := make([]domain.LostItem, 0)
	err := r.db.WithContext(ctx).Where("status IN ?", statuses).
		Order("date_reported DESC").Find(&items).Error
	return items, err
}

// ListArchivable 报案时间早于 before 且未终结的案件
func (r *LostItemRepo) ListArchivable(ctx context.Context, before time.Time) ([]domain.LostItem, error) {
	items := make([]domain.LostItem, 0)
	err := r.db.WithContext(ctx).
		Where("status NOT IN ? AND date_reported < ?",
			[]domain.LostStatus{domain.LostClaimed, domain.LostArchived}, before).
		Order("date_reported ASC").Find(&items).Error
	return items, err
}

// Transition 条件更新：仅当当前状态仍为 from 时生效，返回是否命中
func (r *LostItemRepo) Transition(ctx context.Context, caseNumber string, from, to domain.LostStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).Model(&domain.LostItem{}).
		Where("case_number = ? AND status = ?", caseNumber, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SoftDelete 仅删除处于 allowed 状态的案件
func (r *LostItemRepo) SoftDelete(ctx context.Context, caseNumber string, allowed ...domain.LostStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("case_number = ? AND status IN ?", caseNumber, allowed).
		Delete(&domain.LostItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *LostItemRepo) CountByStatus(ctx context.Context) (map[domain.LostStatus]int64, error) {
	type row struct {
		Status domain.LostStatus
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.LostItem{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.LostStatus]int64, len(rows))
	for _, x := range rows {
		out[x.Status] = x.N
	}
	return out, nil
}
