package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"iva-margem-engine/internal/core"
	"iva-margem-engine/internal/session"
)

func sampleSales() []core.Sale {
	return []core.Sale{
		{ID: "s1", Number: "FT 2025/001", Date: "2025-01-15", Client: "João Silva", Amount: decimal.NewFromInt(1000)},
	}
}

func sampleCosts() []core.Cost {
	return []core.Cost{
		{ID: "c1", Supplier: "TAP Air Portugal", Date: "2025-01-10", Amount: decimal.NewFromInt(400)},
	}
}

func TestMemoryStore_RoundTripIsolation(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	s := &core.Session{ID: "sess-1", Sales: sampleSales(), Costs: sampleCosts(), LastUpdated: time.Now().UTC()}
	if err := store.Set(ctx, s); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Mutating the original after Set must not leak into the store.
	s.Sales[0].Client = "changed"

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Sales[0].Client != "João Silva" {
		t.Error("store must hold its own copy of the snapshot")
	}

	// And mutating a Get result must not leak either.
	got.Sales[0].LinkedCosts = append(got.Sales[0].LinkedCosts, "c1")
	again, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(again.Sales[0].LinkedCosts) != 0 {
		t.Error("reads must return private copies")
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("get missing: expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "missing"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("delete missing: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	now := time.Now().UTC()

	stale := &core.Session{ID: "stale", LastUpdated: now.Add(-48 * time.Hour)}
	fresh := &core.Session{ID: "fresh", LastUpdated: now}
	for _, s := range []*core.Session{stale, fresh} {
		if err := store.Set(ctx, s); err != nil {
			t.Fatalf("set: %v", err)
		}
	}

	purged, err := store.PurgeExpired(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Errorf("expected 1 purged session, got %d", purged)
	}
	if _, err := store.Get(ctx, "stale"); !errors.Is(err, session.ErrNotFound) {
		t.Error("stale session should be gone")
	}
	if _, err := store.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh session should survive: %v", err)
	}
}

func TestManager_CreateOrReplace(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(session.NewMemoryStore(), zap.NewNop())

	created, err := mgr.CreateOrReplace(ctx, "", sampleSales(), sampleCosts())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated session id")
	}
	if created.CreatedAt.IsZero() || created.LastUpdated.IsZero() {
		t.Error("timestamps must be set on creation")
	}

	// Replacing with the same id swaps the snapshot wholesale.
	replaced, err := mgr.CreateOrReplace(ctx, created.ID, sampleSales(), nil)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(replaced.Costs) != 0 {
		t.Errorf("replace must not merge with the old snapshot, got %d costs", len(replaced.Costs))
	}
}

func TestManager_MutateCommitsOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(session.NewMemoryStore(), zap.NewNop())

	created, err := mgr.CreateOrReplace(ctx, "", sampleSales(), sampleCosts())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	_, err = mgr.Mutate(ctx, created.ID, func(s *core.Session) error {
		s.Sales[0].LinkedCosts = append(s.Sales[0].LinkedCosts, "c1")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the mutation error back, got %v", err)
	}

	got, err := mgr.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Sales[0].LinkedCosts) != 0 {
		t.Error("failed mutation must commit nothing")
	}

	updated, err := mgr.Mutate(ctx, created.ID, func(s *core.Session) error {
		_, err := core.Associate(s, []string{"s1"}, []string{"c1"})
		return err
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if len(updated.Edges()) != 1 {
		t.Errorf("expected 1 edge after mutation, got %d", len(updated.Edges()))
	}
	if !updated.LastUpdated.After(created.LastUpdated) && !updated.LastUpdated.Equal(created.LastUpdated) {
		t.Error("mutation must refresh LastUpdated")
	}
}

func TestManager_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(session.NewMemoryStore(), zap.NewNop())

	created, err := mgr.CreateOrReplace(ctx, "", nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := mgr.Mutate(ctx, created.ID, func(s *core.Session) error {
				s.Sales = append(s.Sales, core.Sale{
					ID:     fmt.Sprintf("s%d", i),
					Number: fmt.Sprintf("FT 2025/%03d", i),
					Date:   "2025-02-01",
					Amount: decimal.NewFromInt(100),
				})
				return nil
			})
			if err != nil {
				t.Errorf("mutate %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := mgr.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Sales) != workers {
		t.Errorf("lost updates: expected %d sales, got %d", workers, len(got.Sales))
	}
}

func TestManager_SweeperPurges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := session.NewMemoryStore()
	mgr := session.NewManager(store, zap.NewNop())

	stale := &core.Session{ID: "stale", LastUpdated: time.Now().UTC().Add(-2 * time.Hour)}
	if err := store.Set(ctx, stale); err != nil {
		t.Fatalf("set: %v", err)
	}

	mgr.StartSweeper(ctx, 10*time.Millisecond, time.Hour)

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper did not purge the stale session in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
