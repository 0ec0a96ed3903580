// Package report renders ledger data as chat text, PDF, XLSX and PNG charts.
package report

import (
	"fmt"
	"strings"
	"time"

	"financas/internal/core"
	"financas/internal/services"
)

const DateLayout = "02/01/2006 15:04"

// Reporter renders dates in a fixed location.
type Reporter struct {
	loc *time.Location
}

func New(loc *time.Location) *Reporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Reporter{loc: loc}
}

func (r *Reporter) date(t time.Time) string {
	return t.In(r.loc).Format(DateLayout)
}

// IncomeLine renders "➡️ R$ 2.000,00 (Salário) - 14/01/2026 09:00".
func (r *Reporter) IncomeLine(t core.Transaction) string {
	return fmt.Sprintf("➡️ %s (%s) - %s", core.FormatBRL(t.Amount), t.Category, r.date(t.CreatedAt))
}

// ExpenseLine adds the card, or "Dinheiro", before the date.
func (r *Reporter) ExpenseLine(t core.Transaction) string {
	return r.cardLine("⬅️", t)
}

func (r *Reporter) cardLine(arrow string, t core.Transaction) string {
	return fmt.Sprintf("%s %s (%s) - %s - %s", arrow, core.FormatBRL(t.Amount), t.Category, t.CardOrCash(), r.date(t.CreatedAt))
}

func (r *Reporter) line(t core.Transaction, withCard bool) string {
	switch {
	case t.Kind == core.Expense:
		return r.ExpenseLine(t)
	case withCard:
		return r.cardLine("➡️", t)
	default:
		return r.IncomeLine(t)
	}
}

// List renders header followed by one line per transaction. The card column
// is always shown for expenses and, when withCard is set, for income too.
func (r *Reporter) List(header string, ts []core.Transaction, withCard bool) string {
	var b strings.Builder
	b.WriteString(header)
	for _, t := range ts {
		b.WriteByte('\n')
		b.WriteString(r.line(t, withCard))
	}
	return b.String()
}

// StatusLine is the first row of the main keyboard.
func StatusLine(b core.Balance) string {
	switch b.Status() {
	case core.Negative:
		return "🔴😟 Saldo Negativo"
	case core.HighSpending:
		return "🟠🤔 Gastos altos!"
	default:
		return "🟢😀 Finanças Saudáveis"
	}
}

func statusShort(b core.Balance) string {
	switch b.Status() {
	case core.Negative:
		return "🔴😟 Negativo"
	case core.HighSpending:
		return "🟠🤔 Gastos altos!"
	default:
		return "🟢😀 Saudável"
	}
}

func totals(b core.Balance) string {
	return fmt.Sprintf("💰 Entradas: %s\n💸 Gastos: %s\n📌 Saldo: %s",
		core.FormatBRL(b.Income), core.FormatBRL(b.Expense), core.FormatBRL(b.Net()))
}

// BalanceText answers "Saldo Geral".
func BalanceText(b core.Balance) string {
	return "🧾 Saldo Geral\n" + totals(b) + "\n\nStatus: " + statusShort(b)
}

// OwnerBalanceText is the admin view of another user's balance.
func OwnerBalanceText(name string, b core.Balance) string {
	return "Saldo de " + name + "\n" + totals(b)
}

// AlertText is appended to a confirmation when the balance is unhealthy.
func AlertText(b core.Balance) string {
	return StatusLine(b) + "\n" + totals(b)
}

// RecordedText confirms a new transaction.
func RecordedText(rec services.Recorded) string {
	t := rec.Transaction
	var b strings.Builder
	fmt.Fprintf(&b, "✅ %s %s (Cat: %s)", t.Kind.Label(), core.FormatBRL(t.Amount), t.Category)
	if t.Card != "" {
		fmt.Fprintf(&b, "\n💳 Cartão: %s", t.Card)
	}
	if rec.Alert != nil {
		b.WriteString("\n\n")
		b.WriteString(AlertText(*rec.Alert))
	}
	return b.String()
}

// CardsText answers "Gastos por Cartão".
func CardsText(items []core.CategoryAmount) string {
	if len(items) == 0 {
		return "💳 Gastos por Cartão:\nNenhum gasto registrado."
	}
	var b strings.Builder
	b.WriteString("💳 Gastos por Cartão:\n")
	for _, it := range items {
		fmt.Fprintf(&b, "▪️ %s: %s\n", it.Name, core.FormatBRL(it.Amount))
	}
	return b.String()
}

// SummaryKind selects the wording of a Markdown statement.
type SummaryKind int

const (
	PeriodStatement SummaryKind = iota
	CategoryStatement
)

// SummaryText renders a filtered statement as Telegram Markdown.
func (r *Reporter) SummaryText(kind SummaryKind, s services.Summary) string {
	title := EscapeMarkdown(s.Title)
	empty := "Nenhuma transação neste período."
	footer := "--- *Resumo do Período* ---\n"
	saldo := "📌 Saldo Período"
	if kind == CategoryStatement {
		title = "Categoria: " + title
		empty = "Nenhuma transação encontrada para esta categoria."
		footer = "--- *Resumo da Categoria: " + EscapeMarkdown(s.Title) + "* ---\n"
		saldo = "📌 Saldo Categoria"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🧾 Extrato Filtrado: *%s*\n\n", title)
	if s.Empty() {
		b.WriteString(empty)
		return b.String()
	}
	if len(s.Income) > 0 {
		b.WriteString("--- *Entradas* ---\n")
		for _, t := range s.Income {
			b.WriteString(EscapeMarkdown(r.IncomeLine(t)))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	if len(s.Expense) > 0 {
		b.WriteString("--- *Saídas* ---\n")
		for _, t := range s.Expense {
			b.WriteString(EscapeMarkdown(r.ExpenseLine(t)))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString(footer)
	fmt.Fprintf(&b, "💰 Total Entradas: %s\n", core.FormatBRL(s.Balance.Income))
	fmt.Fprintf(&b, "💸 Total Gastos: %s\n", core.FormatBRL(s.Balance.Expense))
	fmt.Fprintf(&b, "%s: %s\n", saldo, core.FormatBRL(s.Balance.Net()))
	return b.String()
}

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// EscapeMarkdown protects user text inside legacy Telegram Markdown.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
