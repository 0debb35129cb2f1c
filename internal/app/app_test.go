package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"culfs/internal/core/config"
	"culfs/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Read(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.DB.DSN = "file:" + filepath.Join(t.TempDir(), "culfs.db")
	cfg.DB.LogLevel = "silent"
	cfg.JWT.Secret = "test-secret"
	return cfg
}

func TestOpenWithRedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Addr = mr.Addr()
	ctx := context.Background()

	a, err := Open(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	res, err := a.Services.Identity.Login(ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !mr.Exists("culfs:session:" + res.Session.SessionID) {
		t.Error("expected session to be stored in redis")
	}
	if err := a.Services.Identity.Logout(ctx, res.Session); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := a.Services.Identity.Authenticate(ctx, res.Token); !errors.Is(err, domain.ErrAuth) {
		t.Errorf("expected ended session to be rejected, got %v", err)
	}
}

func TestOpenFailsOnUnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Addr = mr.Addr()
	mr.Close()

	if _, err := Open(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
}

func TestOpenWithoutRedisUsesMemorySessions(t *testing.T) {
	cfg := testConfig(t)
	a, err := Open(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()
	if a.RDB != nil {
		t.Error("expected no redis client")
	}
	if _, err := a.Services.Identity.Login(context.Background(), "admin", "admin"); err != nil {
		t.Fatalf("Login: %v", err)
	}
}
