package sanctions

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banking/sanctions-screening/internal/domain"
	"github.com/banking/sanctions-screening/internal/pkg/logger"
)

// Provider loads the full reference list from its backing source
type Provider interface {
	Load(ctx context.Context) ([]domain.SanctionsEntry, error)
}

// RefreshHook is called after a new snapshot has been swapped in
type RefreshHook func(ctx context.Context, snap *Snapshot)

// Store holds the current reference list snapshot. Readers always get a complete
// snapshot; refreshes build a new one and swap it in atomically.
type Store struct {
	provider Provider
	log      *logger.Logger

	current atomic.Pointer[Snapshot]
	version atomic.Uint64

	// Serializes refreshes so versions are swapped in order
	refreshMu sync.Mutex
	hooks     []RefreshHook
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithRefreshHook registers a hook run after every successful refresh
func WithRefreshHook(h RefreshHook) StoreOption {
	return func(s *Store) {
		s.hooks = append(s.hooks, h)
	}
}

// NewStore creates a store that starts with an empty snapshot
func NewStore(provider Provider, log *logger.Logger, opts ...StoreOption) *Store {
	s := &Store{
		provider: provider,
		log:      log.Named("reference_list"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(NewSnapshot(0, nil))
	return s
}

// Snapshot returns the current snapshot; never nil
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Refresh loads the reference list and swaps in a new snapshot. On failure the
// previous snapshot stays in place.
func (s *Store) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	entries, err := s.provider.Load(ctx)
	if err != nil {
		return fmt.Errorf("load reference list: %w", err)
	}

	snap := s.swap(entries)
	s.log.ReferenceListLoaded(snap.Version(), snap.Len(), time.Since(start).Milliseconds())

	for _, h := range s.hooks {
		h(ctx, snap)
	}
	return nil
}

// Replace swaps in a snapshot built from the given entries without consulting the provider
func (s *Store) Replace(entries []domain.SanctionsEntry) *Snapshot {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return s.swap(entries)
}

func (s *Store) swap(entries []domain.SanctionsEntry) *Snapshot {
	snap := NewSnapshot(s.version.Add(1), entries)
	s.current.Store(snap)
	return snap
}

// Run refreshes the reference list every interval until ctx is done.
// Failed refreshes are logged and retried on the next tick.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.log.Warn("reference list refresh failed", logger.ErrorField(err))
			}
		}
	}
}
