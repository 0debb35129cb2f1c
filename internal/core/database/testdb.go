package database

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"
)

// NewTestDB 每个测试一个独立的内存 sqlite，已迁移并写入种子数据
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := NewGorm(Opts{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	if err := Seed(context.Background(), db, AdminSeed{
		Email: "admin@covenantuniversity.edu.ng", Password: "admin", Name: "System Administrator",
	}); err != nil {
		t.Fatalf("seeding test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
