// Package storagetest holds the behaviour every storage.Repository must share.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financas/internal/core"
	"financas/internal/storage"
)

// Factory returns an empty repository. The suite closes it.
type Factory func(t *testing.T) storage.Repository

// Base is the reference instant used by the suite. Backends that truncate
// timestamps to milliseconds still round-trip it exactly.
var Base = time.Date(2026, time.January, 14, 12, 0, 0, 0, time.UTC)

const (
	ownerAna  int64 = 1001
	ownerBeto int64 = 2002
)

// Run executes the conformance suite against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, repo storage.Repository)
	}{
		{"AddAndList", testAddAndList},
		{"ListFilters", testListFilters},
		{"Sum", testSum},
		{"RejectsInvalid", testRejectsInvalid},
		{"DeleteLast", testDeleteLast},
		{"DeleteToday", testDeleteToday},
		{"DeleteAll", testDeleteAll},
		{"DeleteInvalidPolicy", testDeleteInvalidPolicy},
		{"UsersUpsert", testUsersUpsert},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo(t)
			t.Cleanup(func() { _ = repo.Close() })
			tt.fn(t, repo)
		})
	}
}

// Tx builds a valid transaction for owner at the given instant.
func Tx(owner int64, kind core.Kind, amount string, at time.Time) core.NewTransaction {
	category := "Alimentação"
	if kind == core.Income {
		category = "Salário"
	}
	return core.NewTransaction{
		OwnerID:     owner,
		OwnerName:   "owner",
		Kind:        kind,
		Amount:      decimal.RequireFromString(amount),
		RawAmount:   amount,
		Category:    category,
		Method:      core.Cash,
		Description: amount + " " + core.Lower(category),
		CreatedAt:   at,
	}
}

func mustAdd(t *testing.T, repo storage.Repository, tx core.NewTransaction) string {
	t.Helper()
	id, err := repo.Add(context.Background(), tx)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func testAddAndList(t *testing.T, repo storage.Repository) {
	ctx := context.Background()

	card := Tx(ownerAna, core.Expense, "50.5", Base)
	card.Method = core.Card
	card.Card = "Inter"
	card.RawAmount = "50,5"

	oldest := mustAdd(t, repo, Tx(ownerAna, core.Income, "2000", Base.Add(-2*time.Hour)))
	mustAdd(t, repo, Tx(ownerAna, core.Expense, "150", Base.Add(-time.Hour)))
	newest := mustAdd(t, repo, card)
	mustAdd(t, repo, Tx(ownerBeto, core.Expense, "10", Base))

	got, err := repo.List(ctx, storage.Filter{Owner: ownerAna})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, newest, got[0].ID)
	assert.Equal(t, oldest, got[2].ID)
	assert.True(t, got[1].CreatedAt.Before(got[0].CreatedAt))

	first := got[0]
	assert.Equal(t, ownerAna, first.OwnerID)
	assert.Equal(t, core.Expense, first.Kind)
	assert.True(t, decimal.RequireFromString("50.5").Equal(first.Amount), "amount %s", first.Amount)
	assert.Equal(t, "50,5", first.RawAmount)
	assert.Equal(t, "Alimentação", first.Category)
	assert.Equal(t, core.Card, first.Method)
	assert.Equal(t, "Inter", first.Card)
	assert.Equal(t, card.Description, first.Description)
	assert.True(t, Base.Equal(first.CreatedAt), "created at %s", first.CreatedAt)

	all, err := repo.List(ctx, storage.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func testListFilters(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	mustAdd(t, repo, Tx(ownerAna, core.Income, "2000", Base.AddDate(0, 0, -40)))
	mustAdd(t, repo, Tx(ownerAna, core.Expense, "30", Base.AddDate(0, 0, -40)))
	mustAdd(t, repo, Tx(ownerAna, core.Expense, "20", Base))

	expenses, err := repo.List(ctx, storage.Filter{Owner: ownerAna, Kind: core.Expense})
	require.NoError(t, err)
	assert.Len(t, expenses, 2)
	for _, e := range expenses {
		assert.Equal(t, core.Expense, e.Kind)
	}

	thisMonth := core.ThisMonth.Range(Base)
	recent, err := repo.List(ctx, storage.Filter{Owner: ownerAna, Range: thisMonth})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.True(t, decimal.NewFromInt(20).Equal(recent[0].Amount))

	none, err := repo.List(ctx, storage.Filter{Owner: ownerBeto})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testSum(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	mustAdd(t, repo, Tx(ownerAna, core.Income, "1000", Base))
	mustAdd(t, repo, Tx(ownerAna, core.Income, "0.10", Base))
	mustAdd(t, repo, Tx(ownerAna, core.Expense, "0.20", Base))
	mustAdd(t, repo, Tx(ownerAna, core.Expense, "99.99", Base.AddDate(0, -2, 0)))
	mustAdd(t, repo, Tx(ownerBeto, core.Income, "5", Base))

	income, err := repo.Sum(ctx, ownerAna, core.Income, core.All)
	require.NoError(t, err)
	assert.Equal(t, "1000.1", income.String())

	expense, err := repo.Sum(ctx, ownerAna, core.Expense, core.All)
	require.NoError(t, err)
	assert.Equal(t, "100.19", expense.String())

	monthly, err := repo.Sum(ctx, ownerAna, core.Expense, core.ThisMonth.Range(Base))
	require.NoError(t, err)
	assert.Equal(t, "0.2", monthly.String())

	empty, err := repo.Sum(ctx, 42, core.Expense, core.All)
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func testRejectsInvalid(t *testing.T, repo storage.Repository) {
	ctx := context.Background()

	zero := Tx(ownerAna, core.Expense, "0", Base)
	_, err := repo.Add(ctx, zero)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	noOwner := Tx(0, core.Expense, "10", Base)
	_, err = repo.Add(ctx, noOwner)
	assert.ErrorIs(t, err, core.ErrEmptyOwner)

	got, err := repo.List(ctx, storage.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testDeleteLast(t *testing.T, repo storage.Repository) {
	ctx := context.Background()

	n, err := repo.DeleteRange(ctx, ownerAna, core.DeleteLast, Base)
	require.NoError(t, err)
	assert.Zero(t, n)

	keep := mustAdd(t, repo, Tx(ownerAna, core.Expense, "10", Base.Add(-time.Hour)))
	mustAdd(t, repo, Tx(ownerAna, core.Expense, "20", Base))
	other := mustAdd(t, repo, Tx(ownerBeto, core.Expense, "30", Base.Add(time.Hour)))

	n, err = repo.DeleteRange(ctx, ownerAna, core.DeleteLast, Base)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := repo.List(ctx, storage.Filter{Owner: ownerAna})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, keep, left[0].ID)

	betos, err := repo.List(ctx, storage.Filter{Owner: ownerBeto})
	require.NoError(t, err)
	require.Len(t, betos, 1)
	assert.Equal(t, other, betos[0].ID)
}

func testDeleteToday(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	now := Base.Add(time.Hour)

	yesterday := mustAdd(t, repo, Tx(ownerAna, core.Expense, "10", Base.Add(-25*time.Hour)))
	mustAdd(t, repo, Tx(ownerAna, core.Expense, "20", Base))
	mustAdd(t, repo, Tx(ownerAna, core.Income, "30", Base.Add(-11*time.Hour)))

	n, err := repo.DeleteRange(ctx, ownerAna, core.DeleteToday, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := repo.List(ctx, storage.Filter{Owner: ownerAna})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, yesterday, left[0].ID)

	n, err = repo.DeleteRange(ctx, ownerAna, core.DeleteToday, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testDeleteAll(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		mustAdd(t, repo, Tx(ownerAna, core.Expense, "1", Base.Add(time.Duration(-i)*24*time.Hour)))
	}
	mustAdd(t, repo, Tx(ownerBeto, core.Expense, "1", Base))

	n, err := repo.DeleteRange(ctx, ownerAna, core.DeleteAll, Base)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = repo.DeleteRange(ctx, ownerAna, core.DeleteAll, Base)
	require.NoError(t, err)
	assert.Zero(t, n)

	betos, err := repo.List(ctx, storage.Filter{Owner: ownerBeto})
	require.NoError(t, err)
	assert.Len(t, betos, 1)
}

func testDeleteInvalidPolicy(t *testing.T, repo storage.Repository) {
	_, err := repo.DeleteRange(context.Background(), ownerAna, core.DeletePolicy("ontem"), Base)
	assert.ErrorIs(t, err, core.ErrInvalidPolicy)
}

func testUsersUpsert(t *testing.T, repo storage.Repository) {
	ctx := context.Background()

	first := Tx(ownerBeto, core.Expense, "1", Base)
	first.OwnerName = "Beto"
	mustAdd(t, repo, first)

	ana := Tx(ownerAna, core.Expense, "1", Base)
	ana.OwnerName = "Ana"
	mustAdd(t, repo, ana)
	ana.OwnerName = "Ana Maria"
	mustAdd(t, repo, ana)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.User{
		{ID: ownerAna, Name: "Ana Maria"},
		{ID: ownerBeto, Name: "Beto"},
	}, users)
}
