package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"culfs/internal/domain"
)

// Store 汇总各仓储，Tx 内的仓储共享同一个事务
type Store struct {
	db *gorm.DB

	Users         *UserRepo
	Offices       *OfficeRepo
	LostItems     *LostItemRepo
	FoundItems    *FoundItemRepo
	Matches       *MatchRepo
	Notifications *NotificationRepo
	Archives      *ArchiveRepo
	Sequences     *SequenceRepo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepo(db),
		Offices:       NewOfficeRepo(db),
		LostItems:     NewLostItemRepo(db),
		FoundItems:    NewFoundItemRepo(db),
		Matches:       NewMatchRepo(db),
		Notifications: NewNotificationRepo(db),
		Archives:      NewArchiveRepo(db),
		Sequences:     NewSequenceRepo(db),
	}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Tx 在事务中执行 fn，fn 返回错误则整体回滚
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

// translate 把 gorm 错误映射为领域错误
func translate(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound(entity, id)
	case isDupKey(err):
		return fmt.Errorf("%s %s already exists: %w", entity, id, domain.ErrConflict)
	}
	return err
}

// Translate 供直接使用 gorm 的调用方复用同一套错误映射
func Translate(err error, entity, id string) error { return translate(err, entity, id) }
