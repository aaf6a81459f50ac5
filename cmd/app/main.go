package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"iva-margem-engine/internal/adapters/cli"
	"iva-margem-engine/internal/app"
	"iva-margem-engine/internal/config"
	"iva-margem-engine/internal/core"
	"iva-margem-engine/internal/db"
	"iva-margem-engine/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Unable to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to open %s store: %v", cfg.StoreBackend, err)
	}
	defer cleanup()

	mgr := session.NewManager(store, logger)
	mgr.StartSweeper(ctx,
		time.Duration(cfg.SweepIntervalMinutes)*time.Minute,
		time.Duration(cfg.SessionRetentionHours)*time.Hour)

	svc := app.NewEngineService(mgr, core.DefaultMatchConfig(), app.Defaults{
		VATRate:        cfg.DefaultVATRate,
		MatchThreshold: cfg.MatchThreshold,
		MatchMax:       cfg.MatchMax,
	}, logger)

	if len(os.Args) < 2 {
		log.Fatal("Usage: app <seed|show|associate|unlink|clear|suggest|calc|period|validate|delete> [args]")
	}
	cli.Run(ctx, svc, os.Args[1:])
}

// buildStore opens the configured snapshot store backend. The memory
// backend needs no cleanup; the others return one.
func buildStore(ctx context.Context, cfg config.Config) (session.SnapshotStore, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return session.NewPostgresStore(pool), pool.Close, nil

	case config.BackendRedis:
		store := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			time.Duration(cfg.SessionRetentionHours)*time.Hour)
		if err := store.Ping(ctx); err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	default:
		return session.NewMemoryStore(), func() {}, nil
	}
}
