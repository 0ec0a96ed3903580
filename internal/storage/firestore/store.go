// Package firestore stores the ledger in Cloud Firestore, using the
// collection and field names of the bot's historical data.
package firestore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"

	"financas/internal/core"
	"financas/internal/storage"
)

// batchLimit keeps each commit under Firestore's per-batch write ceiling.
const batchLimit = 400

const (
	defaultTransactions = "transacoes"
	defaultUsers        = "usuarios"
)

type Store struct {
	client       *firestore.Client
	transactions string
	users        string
	now          func() time.Time
}

var _ storage.Repository = (*Store)(nil)

type Option func(*Store)

// WithCollectionPrefix namespaces both collections, e.g. for tests sharing
// an emulator.
func WithCollectionPrefix(prefix string) Option {
	return func(s *Store) {
		s.transactions = prefix + defaultTransactions
		s.users = prefix + defaultUsers
	}
}

// New wraps an existing client. Close closes it.
func New(client *firestore.Client, opts ...Option) *Store {
	s := &Store{
		client:       client,
		transactions: defaultTransactions,
		users:        defaultUsers,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect creates a client for projectID. credentialsJSON may be empty to use
// application default credentials or the emulator.
func Connect(ctx context.Context, projectID, credentialsJSON string, opts ...Option) (*Store, error) {
	var clientOpts []option.ClientOption
	if credentialsJSON != "" {
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := firestore.NewClient(ctx, projectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return New(client, opts...), nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Add(ctx context.Context, t core.NewTransaction) (string, error) {
	t, err := storage.Prepare(t, s.now())
	if err != nil {
		return "", err
	}

	userRef := s.client.Collection(s.users).Doc(strconv.FormatInt(t.OwnerID, 10))
	if _, err := userRef.Set(ctx, map[string]interface{}{
		"user_id": t.OwnerID,
		"nome":    t.OwnerName,
	}, firestore.MergeAll); err != nil {
		return "", fmt.Errorf("upsert user: %w", err)
	}

	ref, _, err := s.client.Collection(s.transactions).Add(ctx, docFrom(t))
	if err != nil {
		return "", fmt.Errorf("add transaction: %w", err)
	}
	return ref.ID, nil
}

func (s *Store) Sum(ctx context.Context, owner int64, kind core.Kind, r core.Range) (decimal.Decimal, error) {
	ts, err := s.List(ctx, storage.Filter{Owner: owner, Kind: kind, Range: r})
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}
	return storage.Total(ts), nil
}

func (s *Store) query(f storage.Filter) firestore.Query {
	q := s.client.Collection(s.transactions).Query
	if f.Owner != 0 {
		q = q.Where("user_id", "==", f.Owner)
	}
	if f.Kind != "" {
		q = q.Where("tipo", "==", string(f.Kind))
	}
	if !f.Range.From.IsZero() {
		q = q.Where("data", ">=", f.Range.From)
	}
	if !f.Range.To.IsZero() {
		q = q.Where("data", "<=", f.Range.To)
	}
	return q
}

// List sorts in memory, which avoids a composite index per filter shape.
func (s *Store) List(ctx context.Context, f storage.Filter) ([]core.Transaction, error) {
	docs, err := s.query(f).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(docs))
	for _, doc := range docs {
		var d transactionDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decode transaction %s: %w", doc.Ref.ID, err)
		}
		out = append(out, d.toCore(doc.Ref.ID))
	}
	storage.SortNewestFirst(out)
	return out, nil
}

func (s *Store) DeleteRange(ctx context.Context, owner int64, policy core.DeletePolicy, now time.Time) (int, error) {
	if err := storage.CheckPolicy(policy); err != nil {
		return 0, err
	}

	if policy == core.DeleteLast {
		ts, err := s.List(ctx, storage.Filter{Owner: owner})
		if err != nil {
			return 0, err
		}
		if len(ts) == 0 {
			return 0, nil
		}
		if _, err := s.client.Collection(s.transactions).Doc(ts[0].ID).Delete(ctx); err != nil {
			return 0, fmt.Errorf("delete transaction: %w", err)
		}
		return 1, nil
	}

	q := s.client.Collection(s.transactions).Where("user_id", "==", owner)
	if since := policy.Since(now); !since.IsZero() {
		q = q.Where("data", ">=", since)
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("query transactions: %w", err)
	}

	deleted := 0
	for start := 0; start < len(docs); start += batchLimit {
		end := min(start+batchLimit, len(docs))
		batch := s.client.Batch()
		for _, doc := range docs[start:end] {
			batch.Delete(doc.Ref)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return deleted, fmt.Errorf("commit delete batch: %w", err)
		}
		deleted += end - start
	}

	slog.InfoContext(ctx, "Transactions deleted from Firestore",
		"owner_id", owner,
		"policy", policy,
		"deleted", deleted)
	return deleted, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]core.User, error) {
	docs, err := s.client.Collection(s.users).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	users := make([]core.User, 0, len(docs))
	for _, doc := range docs {
		id, err := strconv.ParseInt(doc.Ref.ID, 10, 64)
		if err != nil {
			continue
		}
		var d userDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", doc.Ref.ID, err)
		}
		users = append(users, core.User{ID: id, Name: d.displayName(id)})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
