package report

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"

	"financas/internal/core"
)

// Document is the content of a PDF or XLSX report.
type Document struct {
	Balance core.Balance
	Income  []core.Transaction
	Expense []core.Transaction
}

// All returns income and expenses merged newest first.
func (d Document) All() []core.Transaction {
	out := make([]core.Transaction, 0, len(d.Income)+len(d.Expense))
	i, j := 0, 0
	for i < len(d.Income) || j < len(d.Expense) {
		switch {
		case j >= len(d.Expense):
			out = append(out, d.Income[i])
			i++
		case i >= len(d.Income) || d.Expense[j].CreatedAt.After(d.Income[i].CreatedAt):
			out = append(out, d.Expense[j])
			j++
		default:
			out = append(out, d.Income[i])
			i++
		}
	}
	return out
}

const (
	pdfFont   = "Helvetica"
	lineH     = 6.0
	pdfMargin = 15.0
)

// PDF renders the financial report. The core fonts only cover cp1252, so
// emoji are dropped and accents are translated.
func (r *Reporter) PDF(d Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetTitle("Relatório Financeiro", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(StripEmoji(s)) }

	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 20)
	pdf.CellFormat(0, 12, text("📑 Relatório Financeiro"), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont(pdfFont, "", 12)
	for _, l := range []string{
		"Entradas: " + core.FormatBRL(d.Balance.Income),
		"Gastos: " + core.FormatBRL(d.Balance.Expense),
		"Saldo: " + core.FormatBRL(d.Balance.Net()),
	} {
		pdf.CellFormat(0, lineH+1, text(l), "", 1, "L", false, 0, "")
	}

	section := func(title string, ts []core.Transaction, line func(core.Transaction) string) {
		pdf.Ln(8)
		pdf.SetFont(pdfFont, "B", 14)
		pdf.CellFormat(0, 9, text(title), "", 1, "L", false, 0, "")
		pdf.SetFont(pdfFont, "", 11)
		for _, t := range ts {
			pdf.MultiCell(0, lineH, text(line(t)), "", "L", false)
		}
	}
	section("💰 Entradas:", d.Income, func(t core.Transaction) string { return r.cardLine("➡️", t) })
	section("💸 Saídas:", d.Expense, r.ExpenseLine)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// StripEmoji removes pictographs, variation selectors and joiners, then
// trims the space they leave behind.
func StripEmoji(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == 0xFE0F || r == 0x200D:
			continue
		case r >= 0x2190 && r <= 0x2BFF:
			continue
		case r >= 0x1F000:
			continue
		case unicode.Is(unicode.So, r):
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
