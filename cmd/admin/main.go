package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"culfs/internal/app"
	"culfs/internal/core/config"
	"culfs/internal/core/logger"
)

const usage = `usage: culfs-admin <command> [flags]

commands:
  migrate            create tables and seed offices and the reserved admin
  sweep [-every d]   archive every lost-item case past the archive window;
                     with -every, repeat on that interval until interrupted
`

func main() { os.Exit(run()) }

func run() int {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	cmd, args := os.Args[1], os.Args[2:]

	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	cfg.DB.AutoMigrate = false // 由 migrate 子命令显式执行
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "migrate":
		err = withApp(ctx, cfg, log, func(a *app.App) error { return a.Migrate(ctx) })
	case "sweep":
		fs := flag.NewFlagSet("sweep", flag.ExitOnError)
		every := fs.Duration("every", 0, "repeat interval, 0 runs once")
		_ = fs.Parse(args)
		err = withApp(ctx, cfg, log, func(a *app.App) error { return sweep(ctx, a, *every) })
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	if err != nil {
		log.Error(cmd+" failed", zap.Error(err))
		return 1
	}
	return 0
}

func withApp(ctx context.Context, cfg *config.Config, l *zap.Logger, fn func(*app.App) error) error {
	a, err := app.Open(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func sweep(ctx context.Context, a *app.App, every time.Duration) error {
	run := func() error {
		done, err := a.Services.LostItems.SweepArchive(ctx)
		a.Log.Info("archive sweep", zap.Int("archived", len(done)), zap.Strings("cases", done))
		return err
	}
	if err := run(); err != nil || every <= 0 {
		return err
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := run(); err != nil {
				a.Log.Warn("archive sweep failed", zap.Error(err))
			}
		}
	}
}
