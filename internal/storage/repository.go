// Package storage defines the persistence port shared by every backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

// Ports implemented by every backend under internal/storage.
type (
	TransactionWriter interface {
		// Add persists the transaction, upserts its owner and returns the new ID.
		Add(ctx context.Context, t core.NewTransaction) (id string, err error)

		// DeleteRange removes the owner's transactions selected by policy and
		// reports how many were removed.
		DeleteRange(ctx context.Context, owner int64, policy core.DeletePolicy, now time.Time) (int, error)
	}

	TransactionReader interface {
		Sum(ctx context.Context, owner int64, kind core.Kind, r core.Range) (decimal.Decimal, error)

		// List returns matching transactions newest first.
		List(ctx context.Context, f Filter) ([]core.Transaction, error)
	}

	UserLister interface {
		ListUsers(ctx context.Context) ([]core.User, error)
	}

	Repository interface {
		TransactionWriter
		TransactionReader
		UserLister
		Close() error
	}
)

// Filter selects transactions. Zero fields match everything.
type Filter struct {
	Owner int64
	Kind  core.Kind
	Range core.Range
}

func (f Filter) Matches(t core.Transaction) bool {
	if f.Owner != 0 && t.OwnerID != f.Owner {
		return false
	}
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	return f.Range.Contains(t.CreatedAt)
}

// Prepare validates a transaction before it is written and fills in the
// creation time when the caller left it zero.
func Prepare(t core.NewTransaction, now time.Time) (core.NewTransaction, error) {
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("validate transaction: %w", err)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

// CheckPolicy rejects unknown delete policies.
func CheckPolicy(p core.DeletePolicy) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidPolicy, p)
	}
	return nil
}

// SortNewestFirst orders by creation time, descending. Ties keep their
// relative order.
func SortNewestFirst(ts []core.Transaction) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].CreatedAt.After(ts[j].CreatedAt)
	})
}

// Total adds up amounts.
func Total(ts []core.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range ts {
		sum = sum.Add(t.Amount)
	}
	return sum
}
