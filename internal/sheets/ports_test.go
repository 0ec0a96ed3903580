package sheets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"financas/internal/core"
)

func TestTransactionRowValues(t *testing.T) {
	at := time.Date(2026, time.March, 2, 18, 30, 0, 0, time.UTC)
	row := TransactionRow{
		At:        at,
		OwnerID:   7,
		OwnerName: "Beto",
		Transaction: core.Transaction{
			ID:          "id-1",
			Kind:        core.Income,
			Amount:      decimal.RequireFromString("2000"),
			Category:    "Salário",
			Method:      core.Cash,
			Description: "2000 salário",
		},
	}

	values := row.Values()
	assert.Len(t, values, len(TransactionHeader))
	assert.Equal(t, []any{"02/03/2026 18:30", int64(7), "Beto", "Entrada", 2000.0, "Salário", "Dinheiro", "", "2000 salário", "id-1"}, values)
}

func TestDeletionRowValues(t *testing.T) {
	row := DeletionRow{At: time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC), OwnerID: 7, Policy: core.DeleteLast, Count: 1}
	values := row.Values()
	assert.Len(t, values, len(DeletionHeader))
	assert.Equal(t, []any{"02/03/2026 08:00", int64(7), "Último valor", 1}, values)
}
