package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"financas/internal/core"
	"financas/internal/services"
)

var (
	brt = time.FixedZone("BRT", -3*60*60)
	at  = time.Date(2026, time.January, 14, 12, 0, 0, 0, time.UTC)
)

func tx(kind core.Kind, amount, category, card string, created time.Time) core.Transaction {
	method := core.Cash
	if card != "" {
		method = core.Card
	}
	return core.Transaction{
		ID:        "id-" + amount,
		OwnerID:   1,
		Kind:      kind,
		Amount:    decimal.RequireFromString(amount),
		Category:  category,
		Method:    method,
		Card:      card,
		CreatedAt: created,
	}
}

func sampleDocument() Document {
	return Document{
		Balance: core.Balance{Income: decimal.RequireFromString("2000"), Expense: decimal.RequireFromString("1234.5")},
		Income:  []core.Transaction{tx(core.Income, "2000", "Salário", "", at.Add(-time.Hour))},
		Expense: []core.Transaction{
			tx(core.Expense, "1234.5", "Moradia", "", at),
			tx(core.Expense, "0.5", "Alimentação", "Nubank", at.Add(-2*time.Hour)),
		},
	}
}

func TestLines(t *testing.T) {
	r := New(brt)
	assert.Equal(t, "➡️ R$ 2.000,00 (Salário) - 14/01/2026 09:00",
		r.IncomeLine(tx(core.Income, "2000", "Salário", "", at)))
	assert.Equal(t, "⬅️ R$ 50,50 (Alimentação) - Inter - 14/01/2026 09:00",
		r.ExpenseLine(tx(core.Expense, "50.5", "Alimentação", "Inter", at)))
	assert.Equal(t, "⬅️ R$ 10,00 (Outros) - Dinheiro - 14/01/2026 09:00",
		r.ExpenseLine(tx(core.Expense, "10", "Outros", "", at)))
}

func TestList(t *testing.T) {
	r := New(time.UTC)
	income := []core.Transaction{tx(core.Income, "100", "Vendas", "", at)}

	assert.Equal(t, "💰 Entradas:\n➡️ R$ 100,00 (Vendas) - 14/01/2026 12:00", r.List("💰 Entradas:", income, false))
	assert.Equal(t, "💰 Entradas de Ana\n➡️ R$ 100,00 (Vendas) - Dinheiro - 14/01/2026 12:00", r.List("💰 Entradas de Ana", income, true))
}

func TestBalanceTexts(t *testing.T) {
	b := core.Balance{Income: decimal.NewFromInt(100), Expense: decimal.NewFromInt(150)}
	assert.Equal(t, "🔴😟 Saldo Negativo", StatusLine(b))
	assert.Equal(t,
		"🧾 Saldo Geral\n💰 Entradas: R$ 100,00\n💸 Gastos: R$ 150,00\n📌 Saldo: R$ -50,00\n\nStatus: 🔴😟 Negativo",
		BalanceText(b))
	assert.Equal(t, "🟢😀 Finanças Saudáveis", StatusLine(core.Balance{}))
	assert.True(t, strings.HasPrefix(OwnerBalanceText("Ana", b), "Saldo de Ana\n💰 Entradas"))

	high := core.Balance{Income: decimal.NewFromInt(100), Expense: decimal.NewFromInt(80)}
	assert.Equal(t, "🟠🤔 Gastos altos!", StatusLine(high))
}

func TestRecordedText(t *testing.T) {
	plain := services.Recorded{Transaction: tx(core.Expense, "150", "Alimentação", "", at)}
	assert.Equal(t, "✅ Gasto R$ 150,00 (Cat: Alimentação)", RecordedText(plain))

	b := core.Balance{Expense: decimal.NewFromInt(50)}
	card := services.Recorded{Transaction: tx(core.Expense, "50", "Outros", "Nubank", at), Alert: &b}
	got := RecordedText(card)
	assert.Contains(t, got, "\n💳 Cartão: Nubank")
	assert.Contains(t, got, "\n\n🔴😟 Saldo Negativo\n💰 Entradas: R$ 0,00")
}

func TestCardsText(t *testing.T) {
	assert.Equal(t, "💳 Gastos por Cartão:\nNenhum gasto registrado.", CardsText(nil))
	got := CardsText([]core.CategoryAmount{{Name: "Nubank", Amount: decimal.RequireFromString("1234.5")}})
	assert.Equal(t, "💳 Gastos por Cartão:\n▪️ Nubank: R$ 1.234,50\n", got)
}

func TestSummaryText(t *testing.T) {
	r := New(time.UTC)
	s := services.Summary{
		Title:   "Este Mês",
		Income:  []core.Transaction{tx(core.Income, "100", "Salário", "", at)},
		Expense: []core.Transaction{tx(core.Expense, "30", "Lazer/entretenimento", "", at)},
		Balance: core.Balance{Income: decimal.NewFromInt(100), Expense: decimal.NewFromInt(30)},
	}

	got := r.SummaryText(PeriodStatement, s)
	assert.True(t, strings.HasPrefix(got, "🧾 Extrato Filtrado: *Este Mês*\n\n--- *Entradas* ---\n"))
	assert.Contains(t, got, "--- *Saídas* ---\n⬅️ R$ 30,00 (Lazer/entretenimento) - Dinheiro")
	assert.Contains(t, got, "📌 Saldo Período: R$ 70,00")

	cat := r.SummaryText(CategoryStatement, services.Summary{Title: "Viagem_2026"})
	assert.Equal(t, "🧾 Extrato Filtrado: *Categoria: Viagem\\_2026*\n\nNenhuma transação encontrada para esta categoria.", cat)

	empty := r.SummaryText(PeriodStatement, services.Summary{Title: "Hoje"})
	assert.True(t, strings.HasSuffix(empty, "Nenhuma transação neste período."))
}

func TestDocumentAll(t *testing.T) {
	all := sampleDocument().All()
	require.Len(t, all, 3)
	assert.Equal(t, "Moradia", all[0].Category)
	assert.Equal(t, "Salário", all[1].Category)
	assert.Equal(t, "Alimentação", all[2].Category)
}

func TestPDF(t *testing.T) {
	b, err := New(brt).PDF(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))

	empty, err := New(nil).PDF(Document{})
	require.NoError(t, err)
	assert.NotEmpty(t, empty)
}

func TestXLSX(t *testing.T) {
	b, err := New(time.UTC).XLSX(sampleDocument())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, []string{"Tipo", "Valor", "Categoria", "Método", "Cartão", "Data"}, rows[0])
	assert.Equal(t, "gasto", rows[1][0])
	assert.Equal(t, "Moradia", rows[1][2])
	assert.Equal(t, "Nubank", rows[3][4])
	assert.Empty(t, rows[4])
	assert.Equal(t, "Entradas", rows[5][0])
	assert.Equal(t, "Saldo", rows[7][0])
}

func TestCharts(t *testing.T) {
	png := []byte("\x89PNG")

	pie, err := PieChart([]core.CategoryAmount{
		{Name: "Alimentação", Amount: decimal.NewFromInt(200)},
		{Name: "Transporte", Amount: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pie, png))

	bars, err := BarChart([]core.MonthTotals{
		{Label: "Dez/2025", Income: decimal.NewFromInt(1000), Expense: decimal.NewFromInt(400)},
		{Label: "Jan/2026", Income: decimal.Zero, Expense: decimal.NewFromInt(50)},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(bars, png))
}

func TestChartsWithoutData(t *testing.T) {
	pie, err := PieChart(nil)
	require.NoError(t, err)
	assert.Nil(t, pie)

	bars, err := BarChart([]core.MonthTotals{{Label: "Jan/2026", Income: decimal.Zero, Expense: decimal.Zero}})
	require.NoError(t, err)
	assert.Nil(t, bars)
}

func TestStripEmoji(t *testing.T) {
	assert.Equal(t, "Relatório Financeiro", StripEmoji("📑 Relatório Financeiro"))
	assert.Equal(t, "R$ 10,00 (Saúde)", StripEmoji("➡️ R$ 10,00 (Saúde)"))
	assert.Equal(t, "Nubank: R$ 1,00", StripEmoji("▪️ Nubank: R$ 1,00"))
}
