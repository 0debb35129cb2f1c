package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"culfs/internal/domain"
)

type SequenceRepo struct{ db *gorm.DB }

func NewSequenceRepo(db *gorm.DB) *SequenceRepo { return &SequenceRepo{db: db} }

// Next 原子递增并返回计数器新值，计数器不存在时从 1 开始。
// 需在事务内调用：upsert 持有行锁直到提交，读取到的值不会被并发事务复用。
func (r *SequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("sequences.value + 1")}),
	}).Create(&domain.Sequence{Name: name, Value: 1}).Error
	if err != nil {
		return 0, fmt.Errorf("bump sequence %s: %w", name, err)
	}
	var s domain.Sequence
	if err := db.First(&s, "name = ?", name).Error; err != nil {
		return 0, fmt.Errorf("read sequence %s: %w", name, err)
	}
	return s.Value, nil
}
