package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxSheet     = "Relatório"
	currencyStyle = "R$ #,##0.00"
)

var xlsxHeader = []any{"Tipo", "Valor", "Categoria", "Método", "Cartão", "Data"}

// XLSX renders one row per transaction followed by the totals.
func (r *Reporter) XLSX(d Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &xlsxHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, t := range d.All() {
		values := []any{
			string(t.Kind),
			t.Amount.InexactFloat64(),
			t.Category,
			t.Method.Label(),
			t.CardOrCash(),
			r.date(t.CreatedAt),
		}
		if err := f.SetSheetRow(xlsxSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	row++ // blank separator
	for _, total := range []struct {
		label string
		value float64
	}{
		{"Entradas", d.Balance.Income.InexactFloat64()},
		{"Gastos", d.Balance.Expense.InexactFloat64()},
		{"Saldo", d.Balance.Net().InexactFloat64()},
	} {
		values := []any{total.label, total.value}
		if err := f.SetSheetRow(xlsxSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return nil, fmt.Errorf("write totals: %w", err)
		}
		row++
	}

	numFmt := currencyStyle
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	if err := f.SetColStyle(xlsxSheet, "B", style); err != nil {
		return nil, fmt.Errorf("style amounts: %w", err)
	}
	if err := f.SetColWidth(xlsxSheet, "A", "F", 18); err != nil {
		return nil, fmt.Errorf("set widths: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
