package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"culfs/internal/core/auth"
	"culfs/internal/core/cache"
	"culfs/internal/core/config"
	"culfs/internal/core/database"
	"culfs/internal/repo"
	"culfs/internal/service"
)

// App 进程级依赖，api 与 admin 两个入口共用
type App struct {
	Cfg      *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	RDB      *redis.Client // 未配置 Redis 时为 nil
	Services *service.Services
}

// Open 连接数据库（按配置迁移与初始化）、可选 Redis，并组装业务服务
func Open(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		SlowThreshold:      time.Duration(cfg.DB.SlowQueryMs) * time.Millisecond,
		Log:                l,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &App{Cfg: cfg, Log: l, DB: db}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := a.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	var (
		sessions auth.SessionStore = auth.NewMemorySessions()
		c        *cache.Cache
	)
	if cfg.Redis.Addr != "" {
		a.RDB = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := a.RDB.Ping(pctx).Err()
		cancel()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
		}
		sessions = auth.NewRedisSessions(a.RDB)
		c = cache.NewWithClient(a.RDB)
		l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	} else {
		l.Warn("redis not configured, sessions are kept in memory")
	}

	a.Services = service.New(service.Deps{
		Store: repo.NewStore(db),
		Log:   l,
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		},
		Sessions: sessions,
		Cache:    c,
	}, service.Options{
		ArchiveAfter: time.Duration(cfg.Lifecycle.ArchiveAfterDays) * 24 * time.Hour,
		AutoMatch:    cfg.Matching.AutoMatch,
		MinScore:     cfg.Matching.MinScore,
		StatsTTL:     time.Duration(cfg.Cache.StatsTTLSec) * time.Second,
		AdminEmail:   cfg.Admin.Email,
	})
	return a, nil
}

// Migrate 建表并写入默认办公室与保留管理员（幂等）
func (a *App) Migrate(ctx context.Context) error {
	if err := database.Migrate(a.DB); err != nil {
		return err
	}
	if err := database.Seed(ctx, a.DB, database.AdminSeed{
		Email: a.Cfg.Admin.Email, Password: a.Cfg.Admin.Password, Name: a.Cfg.Admin.Name,
	}); err != nil {
		return err
	}
	a.Log.Info("automigrate done")
	return nil
}

func (a *App) Close() {
	if a.RDB != nil {
		if err := a.RDB.Close(); err != nil {
			a.Log.Warn("close redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.Log.Warn("close database", zap.Error(err))
		}
	}
}
