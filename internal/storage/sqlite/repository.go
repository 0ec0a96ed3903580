// Package sqlite stores the ledger in an embedded SQLite file
// (modernc.org/sqlite, no cgo). The schema is managed by golang-migrate.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/core"
	"financas/internal/storage"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ storage.Repository = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, now: time.Now}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const (
	upsertUserSQL = `INSERT INTO users (id, name, updated_at) VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`

	insertTransactionSQL = `INSERT INTO transactions
(owner_id, kind, amount, raw_amount, category, method, card, description, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectTransactionSQL = `SELECT id, owner_id, kind, amount, raw_amount, category, method, card, description, created_at
FROM transactions`

	deleteLastSQL = `DELETE FROM transactions WHERE id = (
SELECT id FROM transactions WHERE owner_id = ? ORDER BY created_at DESC, id DESC LIMIT 1)`
)

// Add inserts the transaction and upserts its owner in one database
// transaction.
func (r *Repository) Add(ctx context.Context, t core.NewTransaction) (string, error) {
	t, err := storage.Prepare(t, r.now())
	if err != nil {
		return "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, upsertUserSQL, t.OwnerID, t.OwnerName, r.now().UnixNano()); err != nil {
		return "", fmt.Errorf("upsert user: %w", err)
	}

	res, err := tx.ExecContext(ctx, insertTransactionSQL,
		t.OwnerID, string(t.Kind), t.Amount.String(), t.RawAmount, t.Category,
		string(t.Method), t.Card, t.Description, t.CreatedAt.UnixNano())
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read transaction id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"owner_id", t.OwnerID,
		"kind", t.Kind,
		"amount", t.Amount.String())

	return strconv.FormatInt(id, 10), nil
}

// Sum adds amounts in Go so the decimal text column never goes through
// floating point.
func (r *Repository) Sum(ctx context.Context, owner int64, kind core.Kind, rg core.Range) (decimal.Decimal, error) {
	ts, err := r.List(ctx, storage.Filter{Owner: owner, Kind: kind, Range: rg})
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}
	return storage.Total(ts), nil
}

func (r *Repository) List(ctx context.Context, f storage.Filter) ([]core.Transaction, error) {
	where, args := whereClause(f)
	query := selectTransactionSQL + where + " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			id      int64
			kind    string
			method  string
			created int64
		)
		if err := rows.Scan(&id, &t.OwnerID, &kind, &t.Amount, &t.RawAmount, &t.Category,
			&method, &t.Card, &t.Description, &created); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.ID = strconv.FormatInt(id, 10)
		t.Kind = core.Kind(kind)
		t.Method = core.Method(method)
		t.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func whereClause(f storage.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Owner != 0 {
		conds = append(conds, "owner_id = ?")
		args = append(args, f.Owner)
	}
	if f.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if !f.Range.From.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.Range.From.UnixNano())
	}
	if !f.Range.To.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, f.Range.To.UnixNano())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repository) DeleteRange(ctx context.Context, owner int64, policy core.DeletePolicy, now time.Time) (int, error) {
	if err := storage.CheckPolicy(policy); err != nil {
		return 0, err
	}

	var (
		res sql.Result
		err error
	)
	switch since := policy.Since(now); {
	case policy == core.DeleteLast:
		res, err = r.db.ExecContext(ctx, deleteLastSQL, owner)
	case since.IsZero():
		res, err = r.db.ExecContext(ctx, `DELETE FROM transactions WHERE owner_id = ?`, owner)
	default:
		res, err = r.db.ExecContext(ctx, `DELETE FROM transactions WHERE owner_id = ? AND created_at >= ?`,
			owner, since.UnixNano())
	}
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions deleted from SQLite",
		"owner_id", owner,
		"policy", policy,
		"deleted", n)
	return int(n), nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
