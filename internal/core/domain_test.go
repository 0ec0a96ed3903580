package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validNew() NewTransaction {
	return NewTransaction{
		OwnerID:   42,
		OwnerName: "Ana",
		Kind:      Expense,
		Amount:    decimal.NewFromInt(150),
		RawAmount: "150",
		Category:  "Alimentação",
		Method:    Cash,
	}
}

func TestNewTransactionValidate(t *testing.T) {
	assert.NoError(t, validNew().Validate())

	tests := []struct {
		name   string
		mutate func(*NewTransaction)
		want   error
	}{
		{"no owner", func(n *NewTransaction) { n.OwnerID = 0 }, ErrEmptyOwner},
		{"bad kind", func(n *NewTransaction) { n.Kind = "x" }, ErrInvalidKind},
		{"zero amount", func(n *NewTransaction) { n.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(n *NewTransaction) { n.Amount = decimal.NewFromInt(-5) }, ErrInvalidAmount},
		{"bad method", func(n *NewTransaction) { n.Method = "pix" }, ErrInvalidMethod},
		{"card on cash", func(n *NewTransaction) { n.Card = "Nubank" }, ErrCardMismatch},
		{"blank category", func(n *NewTransaction) { n.Category = "  " }, ErrEmptyCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := validNew()
			tt.mutate(&n)
			assert.ErrorIs(t, n.Validate(), tt.want)
		})
	}
}

func TestNewTransactionBuild(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tx := validNew().Build("id-1", now)
	assert.Equal(t, "id-1", tx.ID)
	assert.Equal(t, now, tx.CreatedAt)

	n := validNew()
	n.CreatedAt = now.Add(-time.Hour)
	assert.Equal(t, now.Add(-time.Hour), n.Build("id-2", now).CreatedAt)
}

func TestCardOrCash(t *testing.T) {
	assert.Equal(t, "Dinheiro", Transaction{}.CardOrCash())
	assert.Equal(t, "Inter", Transaction{Card: "Inter"}.CardOrCash())
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "Entrada", Income.Label())
	assert.Equal(t, "Gasto", Expense.Label())
	assert.Equal(t, "Dinheiro", Cash.Label())
	assert.Equal(t, "Cartão", Card.Label())
}

func TestCapitalize(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"nubank":               "Nubank",
		"visa GOLD":            "Visa gold",
		"alimentação":          "Alimentação",
		"Construção/Reforma":   "Construção/reforma",
		"Lazer/Entretenimento": "Lazer/entretenimento",
		"ÁGUA":                 "Água",
	}
	for in, want := range cases {
		assert.Equal(t, want, Capitalize(in), in)
	}
}

func TestIsWord(t *testing.T) {
	assert.True(t, IsWord("açougue"))
	assert.False(t, IsWord("b3"))
	assert.False(t, IsWord(""))
	assert.False(t, IsWord("r$"))
}

func TestBalanceStatus(t *testing.T) {
	d := decimal.NewFromInt
	tests := []struct {
		name string
		b    Balance
		want HealthStatus
	}{
		{"empty", Balance{}, Healthy},
		{"negative", Balance{Income: d(100), Expense: d(150)}, Negative},
		{"expense without income", Balance{Expense: d(1)}, Negative},
		{"high", Balance{Income: d(100), Expense: d(71)}, HighSpending},
		{"exactly 70%", Balance{Income: d(100), Expense: d(70)}, Healthy},
		{"healthy", Balance{Income: d(100), Expense: d(10)}, Healthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.b.Status())
		})
	}
	assert.Equal(t, "-50", Balance{Income: d(100), Expense: d(150)}.Net().String())
}
