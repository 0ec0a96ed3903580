package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"

	"financas/internal/core"
)

type transactionDoc struct {
	ID          bson.ObjectID   `bson:"_id,omitempty"`
	OwnerID     int64           `bson:"user_id"`
	Kind        string          `bson:"tipo"`
	Amount      bson.Decimal128 `bson:"valor"`
	RawAmount   string          `bson:"valor_txt"`
	Category    string          `bson:"categoria"`
	Description string          `bson:"descricao"`
	Method      string          `bson:"metodo"`
	Card        string          `bson:"cartao,omitempty"`
	CreatedAt   time.Time       `bson:"data"`
}

type userDoc struct {
	ID   int64  `bson:"_id"`
	Name string `bson:"nome"`
}

func docFrom(t core.NewTransaction) (transactionDoc, error) {
	amount, err := bson.ParseDecimal128(t.Amount.String())
	if err != nil {
		return transactionDoc{}, fmt.Errorf("encode amount %s: %w", t.Amount, err)
	}
	return transactionDoc{
		// ObjectIDs from one process increase monotonically, so _id breaks
		// ties between equal timestamps.
		ID:          bson.NewObjectID(),
		OwnerID:     t.OwnerID,
		Kind:        string(t.Kind),
		Amount:      amount,
		RawAmount:   t.RawAmount,
		Category:    t.Category,
		Description: t.Description,
		Method:      string(t.Method),
		Card:        t.Card,
		CreatedAt:   t.CreatedAt,
	}, nil
}

func (d transactionDoc) toCore() (core.Transaction, error) {
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode amount of %s: %w", d.ID.Hex(), err)
	}
	return core.Transaction{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID,
		Kind:        core.Kind(d.Kind),
		Amount:      amount,
		RawAmount:   d.RawAmount,
		Category:    d.Category,
		Method:      core.Method(d.Method),
		Card:        d.Card,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.UTC(),
	}, nil
}
