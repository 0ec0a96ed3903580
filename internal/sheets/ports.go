// Package sheets mirrors ledger events into spreadsheet rows.
package sheets

import (
	"context"
	"time"

	"financas/internal/core"
)

// LedgerMirror is implemented by spreadsheet adapters.
type LedgerMirror interface {
	AppendTransaction(ctx context.Context, row TransactionRow) (rowRef string, err error)
	AppendDeletion(ctx context.Context, row DeletionRow) (rowRef string, err error)
}

const dateLayout = "02/01/2006 15:04"

var (
	TransactionHeader = []any{"Data", "Usuário", "Nome", "Tipo", "Valor", "Categoria", "Método", "Cartão", "Descrição", "ID"}
	DeletionHeader    = []any{"Data", "Usuário", "Política", "Removidos"}
)

// TransactionRow is one line of the ledger sheet.
type TransactionRow struct {
	At          time.Time
	OwnerID     int64
	OwnerName   string
	Transaction core.Transaction
}

// Values returns the cells in TransactionHeader order. The amount is a
// number so spreadsheet formulas can sum the column.
func (r TransactionRow) Values() []any {
	t := r.Transaction
	return []any{
		r.At.Format(dateLayout),
		r.OwnerID,
		r.OwnerName,
		t.Kind.Label(),
		t.Amount.InexactFloat64(),
		t.Category,
		t.Method.Label(),
		t.Card,
		t.Description,
		t.ID,
	}
}

// DeletionRow is one line of the audit sheet.
type DeletionRow struct {
	At      time.Time
	OwnerID int64
	Policy  core.DeletePolicy
	Count   int
}

func (r DeletionRow) Values() []any {
	return []any{r.At.Format(dateLayout), r.OwnerID, r.Policy.Label(), r.Count}
}
