package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"culfs/internal/domain"
	"culfs/pkg/utils"
)

// Migrate 自动迁移全部业务表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// Seed 写入默认办公室与保留管理员（幂等）
func Seed(ctx context.Context, db *gorm.DB, admin AdminSeed) error {
	offices := domain.DefaultOffices()
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&offices).Error; err != nil {
		return fmt.Errorf("seed offices: %w", err)
	}

	var existing domain.User
	err := db.WithContext(ctx).Where("id = ?", domain.AdminUserID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return fmt.Errorf("seed admin lookup: %w", err)
	default:
		return nil
	}

	hash, err := utils.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("seed admin hash: %w", err)
	}
	u := domain.User{
		ID:           domain.AdminUserID,
		Name:         admin.Name,
		Email:        utils.NormalizeEmail(admin.Email),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		OfficeID:     "ADMIN",
	}
	if err := db.WithContext(ctx).Create(&u).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
