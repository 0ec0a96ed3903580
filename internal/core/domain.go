package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "entrada"
	Expense Kind = "gasto"

	Cash Method = "dinheiro"
	Card Method = "cartao"
)

type (
	// Kind tells income from expense. Values match the stored wire format.
	Kind string

	// Method is the payment instrument.
	Method string

	Transaction struct {
		ID          string
		OwnerID     int64
		Kind        Kind
		Amount      decimal.Decimal
		RawAmount   string
		Category    string
		Method      Method
		Card        string // empty unless Method == Card
		Description string
		CreatedAt   time.Time
	}

	// NewTransaction is what callers hand to a storage backend; the backend
	// assigns the ID and, when zero, the creation time.
	NewTransaction struct {
		OwnerID     int64
		OwnerName   string
		Kind        Kind
		Amount      decimal.Decimal
		RawAmount   string
		Category    string
		Method      Method
		Card        string
		Description string
		CreatedAt   time.Time
	}

	User struct {
		ID   int64
		Name string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidKind   = errors.New("invalid transaction kind")
	ErrInvalidMethod = errors.New("invalid payment method")
	ErrEmptyOwner    = errors.New("empty owner")
	ErrEmptyCategory = errors.New("empty category")
	ErrCardMismatch  = errors.New("card name is only allowed for card payments")
	ErrInvalidPolicy = errors.New("invalid delete policy")
	ErrNotFound      = errors.New("not found")
)

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// Label is the capitalized form used in replies ("Entrada", "Gasto").
func (k Kind) Label() string {
	return Capitalize(string(k))
}

func (m Method) Valid() bool {
	return m == Cash || m == Card
}

// Label is the display form ("Dinheiro", "Cartão").
func (m Method) Label() string {
	if m == Card {
		return "Cartão"
	}
	return "Dinheiro"
}

// CardOrCash returns the card name, or "Dinheiro" for cash payments.
func (t Transaction) CardOrCash() string {
	if t.Card == "" {
		return "Dinheiro"
	}
	return t.Card
}

func (n NewTransaction) Validate() error {
	if n.OwnerID == 0 {
		return ErrEmptyOwner
	}
	if !n.Kind.Valid() {
		return ErrInvalidKind
	}
	if !n.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !n.Method.Valid() {
		return ErrInvalidMethod
	}
	if n.Method == Cash && n.Card != "" {
		return ErrCardMismatch
	}
	if strings.TrimSpace(n.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Build turns the request into a stored record with the given identity.
func (n NewTransaction) Build(id string, now time.Time) Transaction {
	created := n.CreatedAt
	if created.IsZero() {
		created = now
	}
	return Transaction{
		ID:          id,
		OwnerID:     n.OwnerID,
		Kind:        n.Kind,
		Amount:      n.Amount,
		RawAmount:   n.RawAmount,
		Category:    n.Category,
		Method:      n.Method,
		Card:        n.Card,
		Description: n.Description,
		CreatedAt:   created,
	}
}
