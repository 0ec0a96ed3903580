package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

type EventType string

const (
	TransactionCreated  EventType = "transaction.created"
	TransactionsDeleted EventType = "transactions.deleted"
)

var ErrUnknownEvent = errors.New("unknown event type")

// TransactionPayload is the wire form of a stored transaction.
type TransactionPayload struct {
	ID          string          `json:"id"`
	Kind        core.Kind       `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	RawAmount   string          `json:"raw_amount,omitempty"`
	Category    string          `json:"category"`
	Method      core.Method     `json:"method"`
	Card        string          `json:"card,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LedgerEvent announces a change to an owner's ledger. Transaction is set for
// TransactionCreated; Policy and Count for TransactionsDeleted.
type LedgerEvent struct {
	Type        EventType           `json:"type"`
	OwnerID     int64               `json:"owner_id"`
	OwnerName   string              `json:"owner_name,omitempty"`
	Transaction *TransactionPayload `json:"transaction,omitempty"`
	Policy      core.DeletePolicy   `json:"policy,omitempty"`
	Count       int                 `json:"count,omitempty"`
	Timestamp   time.Time           `json:"timestamp"`
}

func NewCreatedEvent(t core.Transaction, ownerName string, now time.Time) LedgerEvent {
	return LedgerEvent{
		Type:      TransactionCreated,
		OwnerID:   t.OwnerID,
		OwnerName: ownerName,
		Transaction: &TransactionPayload{
			ID:          t.ID,
			Kind:        t.Kind,
			Amount:      t.Amount,
			RawAmount:   t.RawAmount,
			Category:    t.Category,
			Method:      t.Method,
			Card:        t.Card,
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		},
		Timestamp: now,
	}
}

func NewDeletedEvent(owner int64, policy core.DeletePolicy, count int, now time.Time) LedgerEvent {
	return LedgerEvent{
		Type:      TransactionsDeleted,
		OwnerID:   owner,
		Policy:    policy,
		Count:     count,
		Timestamp: now,
	}
}

// ToCore rebuilds the transaction carried by a created event.
func (p TransactionPayload) ToCore(owner int64) core.Transaction {
	return core.Transaction{
		ID:          p.ID,
		OwnerID:     owner,
		Kind:        p.Kind,
		Amount:      p.Amount,
		RawAmount:   p.RawAmount,
		Category:    p.Category,
		Method:      p.Method,
		Card:        p.Card,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and checks an event.
func LedgerEventFromJSON(data []byte) (LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return LedgerEvent{}, err
	}
	switch e.Type {
	case TransactionCreated:
		if e.Transaction == nil {
			return LedgerEvent{}, fmt.Errorf("%s without transaction", e.Type)
		}
	case TransactionsDeleted:
		if !e.Policy.Valid() {
			return LedgerEvent{}, fmt.Errorf("%s: %w", e.Type, core.ErrInvalidPolicy)
		}
	default:
		return LedgerEvent{}, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	return e, nil
}
