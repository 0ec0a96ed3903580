package chat

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financas/internal/core"
	"financas/internal/report"
	"financas/internal/services"
	"financas/internal/session"
	"financas/internal/storage"
	"financas/internal/storage/memory"
)

const (
	adminID int64 = 1
	userID  int64 = 42
)

var now = time.Date(2026, time.January, 14, 12, 0, 0, 0, time.UTC)

type harness struct {
	t        *testing.T
	handler  *Handler
	sessions *session.Store
}

func newHarness(t *testing.T, repo storage.Repository) *harness {
	t.Helper()
	if repo == nil {
		repo = memory.New()
	}
	ledger := services.NewLedgerService(repo, services.WithClock(func() time.Time { return now }))
	sessions := session.NewStore(0, time.Hour)
	return &harness{
		t:        t,
		handler:  NewHandler(ledger, sessions, report.New(time.UTC), adminID),
		sessions: sessions,
	}
}

func (h *harness) send(user int64, text string) Reply {
	h.t.Helper()
	name := "Ana"
	if user == adminID {
		name = "Admin"
	}
	return h.handler.Handle(context.Background(), Message{ChatID: user, UserID: user, UserName: name, Text: text})
}

func (h *harness) state(user int64) session.State {
	return h.sessions.Get(user).State
}

func hasButton(kb Keyboard, label string) bool {
	for _, row := range kb {
		for _, b := range row {
			if b == label {
				return true
			}
		}
	}
	return false
}

func TestStart(t *testing.T) {
	h := newHarness(t, nil)
	r := h.send(userID, "/start")
	assert.True(t, strings.HasPrefix(r.Text, "Olá, Ana! Bem-vindo(a)."))
	require.Len(t, r.Keyboard, 6)
	assert.Equal(t, []string{"🟢😀 Finanças Saudáveis"}, r.Keyboard[0])
	assert.False(t, hasButton(r.Keyboard, BtnUsers))

	admin := h.send(adminID, "/start")
	assert.True(t, hasButton(admin.Keyboard, BtnUsers))
}

func TestRecordAndStatus(t *testing.T) {
	h := newHarness(t, nil)

	r := h.send(userID, "150 mercado")
	assert.True(t, strings.HasPrefix(r.Text, "✅ Gasto R$ 150,00 (Cat: Alimentação)"))
	assert.Contains(t, r.Text, "🔴😟 Saldo Negativo")
	assert.Equal(t, []string{"🔴😟 Saldo Negativo"}, r.Keyboard[0])

	r = h.send(userID, "50,5 lanche cartão inter")
	assert.Contains(t, r.Text, "💳 Cartão: Inter")

	r = h.send(userID, "5000 salário")
	assert.Equal(t, "✅ Entrada R$ 5.000,00 (Cat: Salário)", r.Text)
	assert.Equal(t, []string{"🟢😀 Finanças Saudáveis"}, r.Keyboard[0])
}

func TestNotUnderstood(t *testing.T) {
	h := newHarness(t, nil)
	r := h.send(userID, "bom dia")
	assert.Equal(t, msgNotUnderstood, r.Text)
	assert.NotEmpty(t, r.Keyboard)
}

func TestBalanceAndLists(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, msgNoIncome, h.send(userID, BtnAllIncome).Text)
	assert.Equal(t, msgNoExpense, h.send(userID, BtnAllExpense).Text)

	h.send(userID, "1000 salário")
	h.send(userID, "100 uber cartão nubank")

	r := h.send(userID, BtnBalance)
	assert.Equal(t, "🧾 Saldo Geral\n💰 Entradas: R$ 1.000,00\n💸 Gastos: R$ 100,00\n📌 Saldo: R$ 900,00\n\nStatus: 🟢😀 Saudável", r.Text)

	r = h.send(userID, BtnAllExpense)
	assert.Equal(t, "💸 Saídas:\n⬅️ R$ 100,00 (Transporte) - Nubank - 14/01/2026 12:00", r.Text)

	r = h.send(userID, BtnAllIncome)
	assert.Equal(t, "💰 Entradas:\n➡️ R$ 1.000,00 (Salário) - 14/01/2026 12:00", r.Text)

	r = h.send(userID, BtnCards)
	assert.Equal(t, "💳 Gastos por Cartão:\n▪️ Nubank: R$ 100,00\n", r.Text)
}

func TestPeriodFilter(t *testing.T) {
	h := newHarness(t, nil)
	h.send(userID, "150 mercado")

	r := h.send(userID, BtnPeriodFilter)
	assert.Equal(t, msgChoosePeriod, r.Text)
	assert.True(t, r.OneTime)
	assert.True(t, hasButton(r.Keyboard, "Mês Passado"))
	assert.Equal(t, session.AwaitingPeriodFilter, h.state(userID))

	r = h.send(userID, "Hoje")
	assert.True(t, r.Markdown)
	assert.True(t, strings.HasPrefix(r.Text, "🧾 Extrato Filtrado: *Hoje*"))
	assert.Contains(t, r.Text, "R$ 150,00 (Alimentação)")
	assert.Equal(t, session.Idle, h.state(userID))

	h.send(userID, BtnPeriodFilter)
	r = h.send(userID, "Mês Passado")
	assert.Contains(t, r.Text, "Nenhuma transação neste período.")

	h.send(userID, BtnPeriodFilter)
	r = h.send(userID, "ontem")
	assert.Equal(t, msgFilterCancelled, r.Text)
	assert.Equal(t, session.Idle, h.state(userID))
}

func TestCategoryFilter(t *testing.T) {
	h := newHarness(t, nil)

	r := h.send(userID, BtnCategoryFilter)
	assert.Equal(t, msgNoCategories, r.Text)
	assert.Equal(t, session.Idle, h.state(userID))

	h.send(userID, "150 mercado")
	h.send(userID, "80 uber")
	h.send(userID, "2000 salário")

	r = h.send(userID, BtnCategoryFilter)
	assert.Equal(t, msgChooseCategory, r.Text)
	assert.Equal(t, Keyboard{{"Alimentação", "Salário"}, {"Transporte"}, {BtnCancel}}, r.Keyboard)
	assert.Equal(t, session.AwaitingCategoryFilter, h.state(userID))

	r = h.send(userID, "alimentação")
	assert.True(t, strings.HasPrefix(r.Text, "🧾 Extrato Filtrado: *Categoria: Alimentação*"))
	assert.Contains(t, r.Text, "📌 Saldo Categoria: R$ -150,00")

	h.send(userID, BtnCategoryFilter)
	r = h.send(userID, "cancelar")
	assert.Equal(t, msgCategoryCanceled, r.Text)
	assert.Equal(t, session.Idle, h.state(userID))
}

func TestReset(t *testing.T) {
	h := newHarness(t, nil)
	h.send(userID, "10 mercado")
	h.send(userID, "20 mercado")

	r := h.send(userID, BtnReset)
	assert.Equal(t, msgChooseReset, r.Text)
	assert.Equal(t, session.AwaitingResetPolicy, h.state(userID))

	r = h.send(userID, "Último valor")
	assert.Equal(t, "✅ Removido (Último valor)", r.Text)

	r = h.send(userID, BtnAllExpense)
	assert.Equal(t, 1, strings.Count(r.Text, "⬅️"))

	h.send(userID, BtnReset)
	r = h.send(userID, BtnCancel)
	assert.Equal(t, msgResetCancelled, r.Text)

	r = h.send(userID, "Tudo")
	assert.Equal(t, msgNotUnderstood, r.Text, "policy labels only act inside the reset menu")

	h.send(userID, BtnReset)
	h.send(userID, "Tudo")
	assert.Equal(t, msgNoExpense, h.send(userID, BtnAllExpense).Text)
}

func TestCancel(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, msgCancelled, h.send(userID, BtnCancel).Text)
}

func TestCharts(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, msgNoExpenseChart, h.send(userID, BtnPie).Text)
	assert.Equal(t, msgNoTransactions, h.send(userID, BtnBars).Text)

	h.send(userID, "150 mercado")
	h.send(userID, "1000 salário")

	r := h.send(userID, BtnPie)
	require.NotNil(t, r.Attachment)
	assert.Equal(t, Photo, r.Attachment.Kind)
	assert.Equal(t, msgPieCaption, r.Attachment.Caption)
	assert.True(t, bytes.HasPrefix(r.Attachment.Data, []byte("\x89PNG")))

	r = h.send(userID, BtnBars)
	require.NotNil(t, r.Attachment)
	assert.Equal(t, msgBarsCaption, r.Attachment.Caption)
}

func TestDocuments(t *testing.T) {
	h := newHarness(t, nil)
	h.send(userID, "150 mercado")

	r := h.send(userID, BtnPDF)
	require.NotNil(t, r.Attachment)
	assert.Equal(t, Document, r.Attachment.Kind)
	assert.Equal(t, "relatorio.pdf", r.Attachment.FileName)
	assert.True(t, bytes.HasPrefix(r.Attachment.Data, []byte("%PDF-")))
	assert.NotEmpty(t, r.Keyboard)

	r = h.send(userID, BtnXLSX)
	require.NotNil(t, r.Attachment)
	assert.Equal(t, "relatorio.xlsx", r.Attachment.FileName)
	assert.True(t, bytes.HasPrefix(r.Attachment.Data, []byte("PK")))
}

func TestAdminFlow(t *testing.T) {
	h := newHarness(t, nil)

	r := h.send(userID, BtnUsers)
	assert.Equal(t, msgNotUnderstood, r.Text, "regular users have no admin menu")

	assert.Equal(t, msgNoUsers, h.send(adminID, BtnUsers).Text)

	h.send(userID, "150 mercado")
	h.send(userID, "2000 salário")

	r = h.send(adminID, BtnUsers)
	assert.Equal(t, msgManageUser, r.Text)
	assert.Equal(t, Keyboard{{"42 - Ana"}, {BtnBack}}, r.Keyboard)

	r = h.send(adminID, "42 - Ana")
	assert.Equal(t, "Gerenciando: Ana.", r.Text)
	assert.Equal(t, adminUserKeyboard(), r.Keyboard)
	assert.Equal(t, session.AdminManaging, h.state(adminID))

	r = h.send(adminID, BtnAdminIncome)
	assert.Equal(t, "💰 Entradas de Ana\n➡️ R$ 2.000,00 (Salário) - Dinheiro - 14/01/2026 12:00", r.Text)

	r = h.send(adminID, BtnAdminExpense)
	assert.Contains(t, r.Text, "💸 Saídas de Ana\n⬅️ R$ 150,00")

	r = h.send(adminID, BtnBalance)
	assert.True(t, strings.HasPrefix(r.Text, "Saldo de Ana\n💰 Entradas: R$ 2.000,00"))

	r = h.send(adminID, BtnPDF)
	require.NotNil(t, r.Attachment)
	assert.Equal(t, "rel_42.pdf", r.Attachment.FileName)
	assert.Equal(t, "PDF de Ana", r.Attachment.Caption)

	r = h.send(adminID, "150 mercado")
	assert.Equal(t, msgInvalid, r.Text)

	r = h.send(adminID, BtnBack)
	assert.Equal(t, msgBackToMenu, r.Text)
	assert.Equal(t, session.Idle, h.state(adminID))
	assert.True(t, hasButton(r.Keyboard, BtnUsers))
}

func TestAdminUserWithoutData(t *testing.T) {
	h := newHarness(t, nil)
	h.send(adminID, "7 - Beto")
	assert.Equal(t, "Beto não tem entradas.", h.send(adminID, BtnAdminIncome).Text)
	assert.Equal(t, "Beto não tem saídas.", h.send(adminID, BtnAdminExpense).Text)
}

type failingRepo struct {
	storage.Repository
}

var errDown = errors.New("database down")

func (failingRepo) Add(context.Context, core.NewTransaction) (string, error) { return "", errDown }

func (failingRepo) Sum(context.Context, int64, core.Kind, core.Range) (decimal.Decimal, error) {
	return decimal.Zero, errDown
}

func TestStorageFailureDegrades(t *testing.T) {
	h := newHarness(t, failingRepo{Repository: memory.New()})

	r := h.send(userID, "150 mercado")
	assert.Equal(t, msgFailure, r.Text)
	assert.NotEmpty(t, r.Keyboard)

	r = h.send(userID, BtnBalance)
	assert.Equal(t, msgFailure, r.Text)
}

func TestParseUserLabel(t *testing.T) {
	u, ok := parseUserLabel("42 - Ana - Maria")
	assert.True(t, ok)
	assert.Equal(t, core.User{ID: 42, Name: "Ana - Maria"}, u)

	for _, text := range []string{"Ana - 42", "42-Ana", "-1 - x", "0 - zero", " - x"} {
		_, ok := parseUserLabel(text)
		assert.False(t, ok, text)
	}
}

func TestPairs(t *testing.T) {
	assert.Equal(t, Keyboard{{"a", "b"}, {"c"}, {BtnCancel}}, pairs([]string{"a", "b", "c"}))
	assert.Equal(t, Keyboard{{"a", "b"}, {BtnCancel}}, pairs([]string{"a", "b"}))
}
