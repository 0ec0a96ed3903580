package relational

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"financas/internal/core"
)

type transactionRecord struct {
	ID          string          `gorm:"primaryKey;size:36"`
	OwnerID     int64           `gorm:"not null;index:idx_owner_created,priority:1"`
	Kind        string          `gorm:"size:16;not null"`
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8);not null"`
	RawAmount   string          `gorm:"size:64"`
	Category    string          `gorm:"size:128;not null"`
	Method      string          `gorm:"size:16;not null"`
	Card        string          `gorm:"size:128"`
	Description string
	CreatedAt   time.Time `gorm:"not null;index:idx_owner_created,priority:2"`
}

func (transactionRecord) TableName() string {
	return "transactions"
}

// newID returns a version 7 UUID. Its text form sorts by creation order
// within a process, which breaks created_at ties.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// BeforeCreate assigns the ID and trims text fields.
func (t *transactionRecord) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = newID()
	}
	t.Category = strings.TrimSpace(t.Category)
	t.Card = strings.TrimSpace(t.Card)
	return nil
}

// AfterFind normalizes timestamps to UTC; some drivers hand them back with a
// fixed +0000 zone instead.
func (t *transactionRecord) AfterFind(_ *gorm.DB) error {
	t.CreatedAt = t.CreatedAt.In(time.UTC)
	return nil
}

func (t transactionRecord) toCore() core.Transaction {
	return core.Transaction{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Kind:        core.Kind(t.Kind),
		Amount:      t.Amount,
		RawAmount:   t.RawAmount,
		Category:    t.Category,
		Method:      core.Method(t.Method),
		Card:        t.Card,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

func recordFrom(t core.NewTransaction) transactionRecord {
	return transactionRecord{
		OwnerID:     t.OwnerID,
		Kind:        string(t.Kind),
		Amount:      t.Amount,
		RawAmount:   t.RawAmount,
		Category:    t.Category,
		Method:      string(t.Method),
		Card:        t.Card,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC(),
	}
}

type userRecord struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"size:256"`
	UpdatedAt time.Time
}

func (userRecord) TableName() string {
	return "users"
}
