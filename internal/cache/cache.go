// Package cache provides a size-bounded LRU cache with per-entry TTL and a
// manager that sweeps expired entries periodically.
package cache

import (
	"context"
	"log/slog"
	"time"
)

type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager sweeps every registered cache on a fixed interval.
type Manager struct {
	caches map[string]Cleaner
	logger *slog.Logger
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		caches: make(map[string]Cleaner),
		logger: logger,
	}
}

// Register adds a cache under name. Not safe to call once Run has started.
func (m *Manager) Register(name string, c Cleaner) {
	m.caches[name] = c
}

// Run sweeps until ctx is done. It always returns nil so it can run inside
// an errgroup without cancelling its siblings.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

// Sweep cleans every registered cache once and returns the number of
// entries removed.
func (m *Manager) Sweep(ctx context.Context) int {
	total := 0
	for name, c := range m.caches {
		if n := c.CleanExpired(); n > 0 {
			m.logger.DebugContext(ctx, "Expired cache entries removed", "cache", name, "removed", n)
			total += n
		}
	}
	return total
}
