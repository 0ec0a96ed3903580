// Package relational stores the ledger through gorm, on PostgreSQL for a
// managed deployment or on a pure-Go SQLite file.
package relational

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"financas/internal/core"
	"financas/internal/storage"
)

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrUnknownDriver = errors.New("unknown database driver")

// newestFirst orders by time, then by ID for rows sharing a timestamp.
const newestFirst = "created_at DESC, id DESC"

type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ storage.Repository = (*Repository)(nil)

// Open connects with the given driver and migrates the schema.
func Open(driver, dsn string, logger *slog.Logger) (*Repository, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	if driver == DriverSQLite {
		// Prevents SQLITE_BUSY.
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&transactionRecord{}, &userRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Repository{db: db, now: time.Now}, nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repository) Add(ctx context.Context, t core.NewTransaction) (string, error) {
	t, err := storage.Prepare(t, r.now())
	if err != nil {
		return "", err
	}
	rec := recordFrom(t)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := userRecord{ID: t.OwnerID, Name: t.OwnerName, UpdatedAt: r.now().UTC()}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).Create(&user).Error; err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (r *Repository) Sum(ctx context.Context, owner int64, kind core.Kind, rg core.Range) (decimal.Decimal, error) {
	ts, err := r.List(ctx, storage.Filter{Owner: owner, Kind: kind, Range: rg})
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}
	return storage.Total(ts), nil
}

func (r *Repository) List(ctx context.Context, f storage.Filter) ([]core.Transaction, error) {
	var recs []transactionRecord
	if err := scoped(r.db.WithContext(ctx), f).
		Order(newestFirst).
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	out := make([]core.Transaction, len(recs))
	for i, rec := range recs {
		out[i] = rec.toCore()
	}
	return out, nil
}

// scoped applies the filter. Bounds are sent in UTC so text timestamps
// compare correctly on SQLite.
func scoped(db *gorm.DB, f storage.Filter) *gorm.DB {
	if f.Owner != 0 {
		db = db.Where("owner_id = ?", f.Owner)
	}
	if f.Kind != "" {
		db = db.Where("kind = ?", string(f.Kind))
	}
	if !f.Range.From.IsZero() {
		db = db.Where("created_at >= ?", f.Range.From.UTC())
	}
	if !f.Range.To.IsZero() {
		db = db.Where("created_at <= ?", f.Range.To.UTC())
	}
	return db
}

func (r *Repository) DeleteRange(ctx context.Context, owner int64, policy core.DeletePolicy, now time.Time) (int, error) {
	if err := storage.CheckPolicy(policy); err != nil {
		return 0, err
	}
	db := r.db.WithContext(ctx)

	if policy == core.DeleteLast {
		var last transactionRecord
		err := db.Where("owner_id = ?", owner).Order(newestFirst).Take(&last).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("find last transaction: %w", err)
		}
		res := db.Delete(&transactionRecord{}, "id = ?", last.ID)
		if res.Error != nil {
			return 0, fmt.Errorf("delete transactions: %w", res.Error)
		}
		return int(res.RowsAffected), nil
	}

	q := db.Where("owner_id = ?", owner)
	if since := policy.Since(now); !since.IsZero() {
		q = q.Where("created_at >= ?", since.UTC())
	}
	res := q.Delete(&transactionRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete transactions: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]core.User, error) {
	var recs []userRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	users := make([]core.User, len(recs))
	for i, u := range recs {
		users[i] = core.User{ID: u.ID, Name: u.Name}
	}
	return users, nil
}
