package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"iva-margem-engine/internal/core"
)

// ErrNotFound is returned by stores when no snapshot exists for an id.
var ErrNotFound = errors.New("session not found")

// SnapshotStore persists whole session snapshots keyed by session id.
// Implementations must treat stored snapshots as immutable: Get returns a
// copy the caller owns, Set stores a copy of what it is given.
type SnapshotStore interface {
	Get(ctx context.Context, id string) (*core.Session, error)
	Set(ctx context.Context, s *core.Session) error
	Delete(ctx context.Context, id string) error
	// PurgeExpired removes snapshots last updated before the cutoff and
	// returns how many were removed. Stores with native expiry may no-op.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// Manager wraps a SnapshotStore with the engine's concurrency contract:
// writes to the same session are serialized, reads are lock-free against
// the last committed snapshot, and a failed mutation commits nothing.
type Manager struct {
	store SnapshotStore
	log   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(store SnapshotStore, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store: store,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the write mutex for a session id, creating it on first
// use. Locks are never removed; a deleted session's lock is just idle.
func (m *Manager) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// CreateOrReplace commits a fresh snapshot. An empty id gets a generated
// one; a known id replaces the existing snapshot wholesale.
func (m *Manager) CreateOrReplace(ctx context.Context, id string, sales []core.Sale, costs []core.Cost) (*core.Session, error) {
	if id == "" {
		id = uuid.NewString()
	}

	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()
	s := &core.Session{
		ID:          id,
		Sales:       append([]core.Sale(nil), sales...),
		Costs:       append([]core.Cost(nil), costs...),
		CreatedAt:   now,
		LastUpdated: now,
	}
	if err := m.store.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("store session %s: %w", id, err)
	}
	m.log.Info("session created", zap.String("session_id", id),
		zap.Int("sales", len(sales)), zap.Int("costs", len(costs)))
	return s.Clone(), nil
}

// Get returns a private copy of the last committed snapshot.
func (m *Manager) Get(ctx context.Context, id string) (*core.Session, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Mutate applies fn to a working copy of the session under its write lock
// and commits the copy only if fn succeeds. The committed snapshot never
// sees a half-applied mutation.
func (m *Manager) Mutate(ctx context.Context, id string, fn func(*core.Session) error) (*core.Session, error) {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	s.LastUpdated = time.Now().UTC()
	if err := m.store.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("store session %s: %w", id, err)
	}
	return s.Clone(), nil
}

// Delete removes a session snapshot.
func (m *Manager) Delete(ctx context.Context, id string) error {
	lock := m.lockFor(id)
	lock.Lock()
	defer lock.Unlock()
	return m.store.Delete(ctx, id)
}

// StartSweeper purges snapshots idle longer than retention, every
// interval, until ctx is cancelled.
func (m *Manager) StartSweeper(ctx context.Context, interval, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().UTC().Add(-retention)
				n, err := m.store.PurgeExpired(ctx, cutoff)
				if err != nil {
					m.log.Warn("session sweep failed", zap.Error(err))
					continue
				}
				if n > 0 {
					m.log.Info("expired sessions purged", zap.Int("count", n))
				}
			}
		}
	}()
}
