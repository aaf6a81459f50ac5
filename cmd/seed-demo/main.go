// seed-demo loads the sample travel-agency dataset into a durable store
// so the CLI has something to work with. Requires a postgres or redis
// backend: seeding a memory store would vanish with the process.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"iva-margem-engine/internal/app"
	"iva-margem-engine/internal/config"
	"iva-margem-engine/internal/core"
	"iva-margem-engine/internal/db"
	"iva-margem-engine/internal/demo"
	"iva-margem-engine/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	var store session.SnapshotStore
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[CONNECT] %v", err)
		}
		defer pool.Close()
		store = session.NewPostgresStore(pool)

	case config.BackendRedis:
		rs := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			time.Duration(cfg.SessionRetentionHours)*time.Hour)
		if err := rs.Ping(ctx); err != nil {
			log.Fatalf("[CONNECT] %v", err)
		}
		defer rs.Close()
		store = rs

	default:
		log.Fatalf("[CONFIG] STORE_BACKEND=%s is not durable; use postgres or redis", cfg.StoreBackend)
	}

	mgr := session.NewManager(store, zap.NewNop())
	svc := app.NewEngineService(mgr, core.DefaultMatchConfig(), app.Defaults{VATRate: cfg.DefaultVATRate}, nil)

	res, err := svc.CreateOrReplaceSession(ctx, app.CreateSessionRequest{
		Sales: demo.Sales(),
		Costs: demo.Costs(),
	})
	if err != nil {
		log.Fatalf("[SEED] %v", err)
	}

	fmt.Printf("Demo session ready: %s\n", res.Session.ID)
	fmt.Printf("  %d sales, %d costs\n", len(res.Session.Sales), len(res.Session.Costs))
	fmt.Printf("Try: app suggest %s\n", res.Session.ID)
}
