package firestore

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

// transactionDoc mirrors a document in the transactions collection. valor_num
// is kept as a float for older readers; valor_exato is authoritative.
type transactionDoc struct {
	OwnerID     int64     `firestore:"user_id"`
	Kind        string    `firestore:"tipo"`
	AmountFloat float64   `firestore:"valor_num"`
	Amount      string    `firestore:"valor_exato,omitempty"`
	RawAmount   string    `firestore:"valor_txt"`
	Category    string    `firestore:"categoria"`
	Description string    `firestore:"descricao"`
	Method      string    `firestore:"metodo"`
	Card        *string   `firestore:"cartao"`
	CreatedAt   time.Time `firestore:"data"`
}

type userDoc struct {
	OwnerID int64  `firestore:"user_id"`
	Name    string `firestore:"nome"`
}

func docFrom(t core.NewTransaction) transactionDoc {
	d := transactionDoc{
		OwnerID:     t.OwnerID,
		Kind:        string(t.Kind),
		AmountFloat: t.Amount.InexactFloat64(),
		Amount:      t.Amount.String(),
		RawAmount:   t.RawAmount,
		Category:    t.Category,
		Description: t.Description,
		Method:      string(t.Method),
		CreatedAt:   t.CreatedAt,
	}
	if t.Card != "" {
		card := t.Card
		d.Card = &card
	}
	return d
}

func (d transactionDoc) toCore(id string) core.Transaction {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		amount = decimal.NewFromFloat(d.AmountFloat)
	}
	t := core.Transaction{
		ID:          id,
		OwnerID:     d.OwnerID,
		Kind:        core.Kind(d.Kind),
		Amount:      amount,
		RawAmount:   d.RawAmount,
		Category:    d.Category,
		Method:      core.Method(d.Method),
		Description: d.Description,
		CreatedAt:   d.CreatedAt.UTC(),
	}
	if d.Card != nil {
		t.Card = *d.Card
	}
	return t
}

func (d userDoc) displayName(id int64) string {
	if d.Name == "" {
		return fmt.Sprintf("Usuário %d", id)
	}
	return d.Name
}
