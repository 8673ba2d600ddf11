package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/campusquiz/internal/besttime"
	"github.com/playperu/campusquiz/internal/campusquiz"
	"github.com/playperu/campusquiz/internal/config"
	"github.com/playperu/campusquiz/internal/database"
	"github.com/playperu/campusquiz/internal/handler/health"
	"github.com/playperu/campusquiz/internal/kv"
	"github.com/playperu/campusquiz/internal/migrations"
	"github.com/playperu/campusquiz/internal/server"
	"github.com/playperu/campusquiz/internal/timer"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	if err := campusquiz.Validate(campusquiz.Locations); err != nil {
		return fmt.Errorf("validating locations: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	best := besttime.New(store, logger)
	if seconds, ok := best.Get(ctx); ok {
		logger.Info("loaded best time", "seconds", seconds, "formatted", timer.Format(seconds))
	}

	broker := server.NewBroker()
	sessions := server.NewRegistry(logger, broker, best, server.RegistryOptions{
		Locations:    campusquiz.Locations,
		Clock:        timer.System(),
		TickInterval: cfg.TickInterval,
		TTL:          cfg.SessionTTL,
	})
	defer sessions.Close()

	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Sessions: sessions,
		Broker:   broker,
		Best:     best,
		Checks: map[string]health.Checker{
			cfg.BestTimeStore: health.CheckerFunc(store.Ping),
		},
		SPADir: cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		return sessions.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

// openStore connects the configured best-time backend.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (kv.Store, func(), error) {
	switch cfg.BestTimeStore {
	case config.StoreRedis:
		rdb, err := kv.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("connected to redis")
		return kv.NewRedis(rdb), func() { rdb.Close() }, nil

	case config.StoreMemory:
		logger.Warn("best time will not survive a restart", "store", cfg.BestTimeStore)
		return kv.NewMemory(), func() {}, nil

	default:
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("creating db dir: %w", err)
			}
		}
		db, err := database.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to sqlite: %w", err)
		}
		if err := migrations.Run(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("connected to sqlite", "path", cfg.DBPath)
		return kv.NewSQLite(db), func() { db.Close() }, nil
	}
}
