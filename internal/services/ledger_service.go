// Package services orchestrates ledger operations across storage and the
// event bus.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/amqp"
	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/interpret"
	"financas/internal/storage"
)

var ErrNotUnderstood = errors.New("message not understood")

// DefaultMonths is the length of the monthly series chart.
const DefaultMonths = 6

// Publisher sends ledger events. *amqp.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, ev amqp.LedgerEvent) error
}

type LedgerService struct {
	repo      storage.Repository
	publisher Publisher
	balances  *cache.LRUCache[int64, core.Balance]
	loc       *time.Location
	now       func() time.Time
}

type Option func(*LedgerService)

// WithPublisher announces every write on p.
func WithPublisher(p Publisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

// WithLocation sets the timezone periods are resolved in.
func WithLocation(loc *time.Location) Option {
	return func(s *LedgerService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithBalanceCache keeps overall balances for ttl. Writes through the
// service invalidate the owner's entry.
func WithBalanceCache(size int, ttl time.Duration) Option {
	return func(s *LedgerService) { s.balances = cache.NewLRUCache[int64, core.Balance](size, ttl) }
}

func NewLedgerService(repo storage.Repository, opts ...Option) *LedgerService {
	s := &LedgerService{repo: repo, loc: time.UTC, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BalanceCache is nil unless WithBalanceCache was given.
func (s *LedgerService) BalanceCache() *cache.LRUCache[int64, core.Balance] {
	return s.balances
}

// Now is the service clock in its location.
func (s *LedgerService) Now() time.Time {
	return s.now().In(s.loc)
}

// Recorded is the outcome of a successful Record. Alert is set when the
// owner's overall balance is no longer healthy.
type Recorded struct {
	Transaction core.Transaction
	Alert       *core.Balance
}

// Record interprets text and persists the resulting transaction.
func (s *LedgerService) Record(ctx context.Context, owner int64, ownerName, text string) (Recorded, error) {
	r := interpret.Interpret(text)
	if !r.Recognized() {
		return Recorded{}, ErrNotUnderstood
	}

	now := s.Now()
	nt := r.Transaction(owner, ownerName, text)
	nt.CreatedAt = now

	id, err := s.repo.Add(ctx, nt)
	if err != nil {
		return Recorded{}, fmt.Errorf("record transaction: %w", err)
	}
	s.invalidate(owner)
	tx := nt.Build(id, now)

	slog.InfoContext(ctx, "Transaction recorded",
		"owner_id", owner,
		"id", id,
		"kind", tx.Kind,
		"amount", tx.Amount.String(),
		"category", tx.Category,
		"payment_method", tx.Method)

	s.publish(ctx, amqp.NewCreatedEvent(tx, ownerName, now))

	out := Recorded{Transaction: tx}
	bal, err := s.OverallBalance(ctx, owner)
	if err != nil {
		slog.WarnContext(ctx, "Failed to compute balance alert", "owner_id", owner, "error", err)
		return out, nil
	}
	if bal.Status() != core.Healthy {
		out.Alert = &bal
	}
	return out, nil
}

// Balance sums the owner's income and expenses over r.
func (s *LedgerService) Balance(ctx context.Context, owner int64, r core.Range) (core.Balance, error) {
	income, err := s.repo.Sum(ctx, owner, core.Income, r)
	if err != nil {
		return core.Balance{}, fmt.Errorf("sum income: %w", err)
	}
	expense, err := s.repo.Sum(ctx, owner, core.Expense, r)
	if err != nil {
		return core.Balance{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Balance{Income: income, Expense: expense}, nil
}

// OverallBalance is Balance over all time, served from the balance cache
// when one is configured.
func (s *LedgerService) OverallBalance(ctx context.Context, owner int64) (core.Balance, error) {
	if s.balances != nil {
		if b, ok := s.balances.Get(owner); ok {
			return b, nil
		}
	}
	b, err := s.Balance(ctx, owner, core.All)
	if err != nil {
		return core.Balance{}, err
	}
	if s.balances != nil {
		s.balances.Set(owner, b)
	}
	return b, nil
}

// Statement lists the owner's transactions of kind in r, newest first.
// Non-positive amounts are left out.
func (s *LedgerService) Statement(ctx context.Context, owner int64, kind core.Kind, r core.Range) ([]core.Transaction, error) {
	ts, err := s.repo.List(ctx, storage.Filter{Owner: owner, Kind: kind, Range: r})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return positive(ts), nil
}

// Summary groups a statement by kind with its totals.
type Summary struct {
	Title   string
	Income  []core.Transaction
	Expense []core.Transaction
	Balance core.Balance
}

func (s Summary) Empty() bool {
	return len(s.Income) == 0 && len(s.Expense) == 0
}

// PeriodSummary is the filtered statement for a named period.
func (s *LedgerService) PeriodSummary(ctx context.Context, owner int64, p core.Period) (Summary, error) {
	return s.summarize(ctx, owner, string(p), p.Range(s.Now()), func(core.Transaction) bool { return true })
}

// ByCategory is the all-time statement of one category, matched ignoring case.
func (s *LedgerService) ByCategory(ctx context.Context, owner int64, category string) (Summary, error) {
	return s.summarize(ctx, owner, core.Capitalize(strings.TrimSpace(category)), core.All, func(t core.Transaction) bool {
		return core.EqualFold(t.Category, category)
	})
}

func (s *LedgerService) summarize(ctx context.Context, owner int64, title string, r core.Range, keep func(core.Transaction) bool) (Summary, error) {
	ts, err := s.repo.List(ctx, storage.Filter{Owner: owner, Range: r})
	if err != nil {
		return Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	out := Summary{Title: title}
	for _, t := range positive(ts) {
		if !keep(t) {
			continue
		}
		if t.Kind == core.Income {
			out.Income = append(out.Income, t)
		} else {
			out.Expense = append(out.Expense, t)
		}
	}
	out.Balance = core.Balance{Income: storage.Total(out.Income), Expense: storage.Total(out.Expense)}
	return out, nil
}

// Categories returns the owner's distinct categories, sorted.
func (s *LedgerService) Categories(ctx context.Context, owner int64) ([]string, error) {
	ts, err := s.repo.List(ctx, storage.Filter{Owner: owner})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	seen := map[string]struct{}{}
	var out []string
	for _, t := range positive(ts) {
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	sort.Strings(out)
	return out, nil
}

// SpendingByCategory totals expenses in r per category, in order of the
// most recent expense of each.
func (s *LedgerService) SpendingByCategory(ctx context.Context, owner int64, r core.Range) ([]core.CategoryAmount, error) {
	ts, err := s.Statement(ctx, owner, core.Expense, r)
	if err != nil {
		return nil, err
	}
	return group(ts, func(t core.Transaction) string { return t.Category }), nil
}

// SpendingByCard totals card expenses per card. Cash is left out.
func (s *LedgerService) SpendingByCard(ctx context.Context, owner int64) ([]core.CategoryAmount, error) {
	ts, err := s.Statement(ctx, owner, core.Expense, core.All)
	if err != nil {
		return nil, err
	}
	return group(ts, func(t core.Transaction) string { return t.Card }), nil
}

// MonthlySeries returns income and expense totals for the last n months,
// oldest first.
func (s *LedgerService) MonthlySeries(ctx context.Context, owner int64, n int) ([]core.MonthTotals, error) {
	months := core.LastMonths(s.Now(), n)
	out := make([]core.MonthTotals, 0, len(months))
	for _, m := range months {
		b, err := s.Balance(ctx, owner, m.Range)
		if err != nil {
			return nil, fmt.Errorf("month %s: %w", m.Label, err)
		}
		out = append(out, core.MonthTotals{Label: m.Label, Income: b.Income, Expense: b.Expense})
	}
	return out, nil
}

// Reset deletes the owner's transactions selected by policy.
func (s *LedgerService) Reset(ctx context.Context, owner int64, policy core.DeletePolicy) (int, error) {
	now := s.Now()
	n, err := s.repo.DeleteRange(ctx, owner, policy, now)
	if err != nil {
		return 0, fmt.Errorf("reset transactions: %w", err)
	}
	s.invalidate(owner)

	slog.InfoContext(ctx, "Transactions reset", "owner_id", owner, "policy", policy, "deleted", n)
	s.publish(ctx, amqp.NewDeletedEvent(owner, policy, n, now))
	return n, nil
}

// Users lists every known owner for the admin menu.
func (s *LedgerService) Users(ctx context.Context) ([]core.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *LedgerService) invalidate(owner int64) {
	if s.balances != nil {
		s.balances.Delete(owner)
	}
}

// publish never fails the caller: the write already succeeded.
func (s *LedgerService) publish(ctx context.Context, ev amqp.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"event_type", ev.Type,
			"owner_id", ev.OwnerID,
			"error", err)
	}
}

func positive(ts []core.Transaction) []core.Transaction {
	out := ts[:0:0]
	for _, t := range ts {
		if t.Amount.IsPositive() {
			out = append(out, t)
		}
	}
	return out
}

// group sums amounts per non-empty key, keeping first-seen order.
func group(ts []core.Transaction, key func(core.Transaction) string) []core.CategoryAmount {
	index := map[string]int{}
	var out []core.CategoryAmount
	for _, t := range ts {
		k := key(t)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, core.CategoryAmount{Name: k, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	return out
}
