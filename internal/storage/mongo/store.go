// Package mongo stores the ledger in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"financas/internal/core"
	"financas/internal/storage"
)

const (
	transactionsCollection = "transacoes"
	usersCollection        = "usuarios"
)

type Store struct {
	client       *mongo.Client
	transactions *mongo.Collection
	users        *mongo.Collection
	now          func() time.Time
}

var _ storage.Repository = (*Store)(nil)

// Connect dials uri, checks the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:       client,
		transactions: db.Collection(transactionsCollection),
		users:        db.Collection(usersCollection),
		now:          time.Now,
	}

	if _, err := s.transactions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "data", Value: -1}},
	}); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) Add(ctx context.Context, t core.NewTransaction) (string, error) {
	t, err := storage.Prepare(t, s.now())
	if err != nil {
		return "", err
	}

	d, err := docFrom(t)
	if err != nil {
		return "", err
	}

	if _, err := s.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: t.OwnerID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "nome", Value: t.OwnerName}}}},
		options.UpdateOne().SetUpsert(true),
	); err != nil {
		return "", fmt.Errorf("upsert user: %w", err)
	}

	res, err := s.transactions.InsertOne(ctx, d)
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id.Hex(), nil
}

func (s *Store) Sum(ctx context.Context, owner int64, kind core.Kind, r core.Range) (decimal.Decimal, error) {
	ts, err := s.List(ctx, storage.Filter{Owner: owner, Kind: kind, Range: r})
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}
	return storage.Total(ts), nil
}

func filterDoc(f storage.Filter) bson.D {
	q := bson.D{}
	if f.Owner != 0 {
		q = append(q, bson.E{Key: "user_id", Value: f.Owner})
	}
	if f.Kind != "" {
		q = append(q, bson.E{Key: "tipo", Value: string(f.Kind)})
	}
	var created bson.D
	if !f.Range.From.IsZero() {
		created = append(created, bson.E{Key: "$gte", Value: f.Range.From})
	}
	if !f.Range.To.IsZero() {
		created = append(created, bson.E{Key: "$lte", Value: f.Range.To})
	}
	if len(created) > 0 {
		q = append(q, bson.E{Key: "data", Value: created})
	}
	return q
}

func (s *Store) List(ctx context.Context, f storage.Filter) ([]core.Transaction, error) {
	cur, err := s.transactions.Find(ctx, filterDoc(f),
		options.Find().SetSort(bson.D{{Key: "data", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(docs))
	for _, d := range docs {
		t, err := d.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) DeleteRange(ctx context.Context, owner int64, policy core.DeletePolicy, now time.Time) (int, error) {
	if err := storage.CheckPolicy(policy); err != nil {
		return 0, err
	}

	if policy == core.DeleteLast {
		var last transactionDoc
		err := s.transactions.FindOne(ctx, bson.D{{Key: "user_id", Value: owner}},
			options.FindOne().SetSort(bson.D{{Key: "data", Value: -1}, {Key: "_id", Value: -1}}),
		).Decode(&last)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("find last transaction: %w", err)
		}
		res, err := s.transactions.DeleteOne(ctx, bson.D{{Key: "_id", Value: last.ID}})
		if err != nil {
			return 0, fmt.Errorf("delete transaction: %w", err)
		}
		return int(res.DeletedCount), nil
	}

	q := bson.D{{Key: "user_id", Value: owner}}
	if since := policy.Since(now); !since.IsZero() {
		q = append(q, bson.E{Key: "data", Value: bson.D{{Key: "$gte", Value: since}}})
	}
	res, err := s.transactions.DeleteMany(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions deleted from MongoDB",
		"owner_id", owner,
		"policy", policy,
		"deleted", res.DeletedCount)
	return int(res.DeletedCount), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]core.User, error) {
	cur, err := s.users.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]core.User, len(docs))
	for i, d := range docs {
		users[i] = core.User{ID: d.ID, Name: d.Name}
	}
	return users, nil
}
