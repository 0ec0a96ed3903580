// Package memory is a process-local storage backend. Data is lost on exit.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"financas/internal/core"
	"financas/internal/storage"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
	users map[int64]string
	now   func() time.Time
}

var _ storage.Repository = (*Store)(nil)

func New() *Store {
	return &Store{users: map[int64]string{}, now: time.Now}
}

// Add stores the transaction and returns a random ID.
func (s *Store) Add(_ context.Context, t core.NewTransaction) (string, error) {
	t, err := storage.Prepare(t, s.now())
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t.Build(id, t.CreatedAt))
	s.users[t.OwnerID] = t.OwnerName
	return id, nil
}

func (s *Store) Sum(ctx context.Context, owner int64, kind core.Kind, r core.Range) (decimal.Decimal, error) {
	ts, err := s.List(ctx, storage.Filter{Owner: owner, Kind: kind, Range: r})
	if err != nil {
		return decimal.Zero, err
	}
	return storage.Total(ts), nil
}

func (s *Store) List(_ context.Context, f storage.Filter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	// Walk backwards so equal timestamps come out latest insert first.
	for i := len(s.items) - 1; i >= 0; i-- {
		if f.Matches(s.items[i]) {
			out = append(out, s.items[i])
		}
	}
	storage.SortNewestFirst(out)
	return out, nil
}

func (s *Store) DeleteRange(_ context.Context, owner int64, policy core.DeletePolicy, now time.Time) (int, error) {
	if err := storage.CheckPolicy(policy); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if policy == core.DeleteLast {
		latest := -1
		for i, t := range s.items {
			if t.OwnerID == owner && (latest < 0 || !t.CreatedAt.Before(s.items[latest].CreatedAt)) {
				latest = i
			}
		}
		if latest < 0 {
			return 0, nil
		}
		s.items = append(s.items[:latest], s.items[latest+1:]...)
		return 1, nil
	}

	since := policy.Since(now)
	kept := s.items[:0]
	deleted := 0
	for _, t := range s.items {
		if t.OwnerID == owner && !t.CreatedAt.Before(since) {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	s.items = kept
	return deleted, nil
}

// ListUsers returns every owner seen by Add, ordered by ID.
func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]core.User, 0, len(s.users))
	for id, name := range s.users {
		users = append(users, core.User{ID: id, Name: name})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) Close() error {
	return nil
}
