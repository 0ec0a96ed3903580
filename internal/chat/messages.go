// Package chat implements the menu-driven conversation on top of the ledger
// service. It is transport agnostic: telegram adapts updates to Message and
// sends back the Reply.
package chat

import (
	"fmt"

	"financas/internal/core"
)

// Message is one incoming text from a user.
type Message struct {
	ChatID   int64
	UserID   int64
	UserName string
	Text     string
}

// Keyboard rows of button labels.
type Keyboard [][]string

type AttachmentKind int

const (
	Photo AttachmentKind = iota
	Document
)

// Attachment is a file sent along with the reply. Caption replaces Text.
type Attachment struct {
	Kind     AttachmentKind
	FileName string
	Data     []byte
	Caption  string
}

type Reply struct {
	Text       string
	Markdown   bool
	Keyboard   Keyboard
	OneTime    bool
	Attachment *Attachment
}

// Buttons.
const (
	BtnBalance        = "🧾 Saldo Geral"
	BtnCards          = "💳 Gastos por Cartão"
	BtnAllIncome      = "💰 Ver Entradas (Tudo)"
	BtnAllExpense     = "💸 Ver Saídas (Tudo)"
	BtnPeriodFilter   = "🧾 Filtrar Extrato"
	BtnCategoryFilter = "📊 Filtrar por Categoria"
	BtnPie            = "📊 Gráfico Pizza"
	BtnBars           = "📊 Gráfico Barras"
	BtnPDF            = "📑 Gerar PDF"
	BtnXLSX           = "📊 Gerar XLSX"
	BtnReset          = "🔄 Resetar Valores"
	BtnUsers          = "👁️ Ver Usuários"

	BtnAdminIncome  = "💰 Entradas"
	BtnAdminExpense = "💸 Saídas"
	BtnBack         = "⬅️ Voltar"
	BtnCancel       = "Cancelar"
)

// Texts.
const (
	msgGreeting         = "Olá, %s! Bem-vindo(a).\nDigite valor + descrição (ex: '150 mercado').\nUse o teclado para outras opções:"
	msgNotUnderstood    = "❌ Não entendi. Digite valor + descrição (ex: '50 lanche')."
	msgFailure          = "⚠️ Não consegui concluir agora. Tente novamente em instantes."
	msgCancelled        = "Ação cancelada."
	msgFilterCancelled  = "Filtro cancelado."
	msgCategoryCanceled = "Filtro por categoria cancelado."
	msgResetCancelled   = "Reset cancelado."
	msgChoosePeriod     = "Selecione o período:"
	msgChooseCategory   = "Selecione uma categoria para filtrar:"
	msgNoCategories     = "Nenhuma categoria foi registrada ainda. Use o bot primeiro (ex: '50 lanche')."
	msgChooseReset      = "Período para resetar:"
	msgRemoved          = "✅ Removido (%s)"
	msgNoIncome         = "Nenhuma entrada."
	msgNoExpense        = "Nenhuma saída."
	msgNoExpenseChart   = "Nenhum gasto."
	msgNoTransactions   = "Nenhuma transação."
	msgPieCaption       = "💸 Gastos por Categoria"
	msgBarsCaption      = "📊 Entradas x Gastos"
	msgNoUsers          = "Nenhum usuário."
	msgManageUser       = "Gerenciar usuário:"
	msgManaging         = "Gerenciando: %s."
	msgBackToMenu       = "Voltando..."
	msgInvalid          = "Inválido."
)

func mainKeyboard(status string, admin bool) Keyboard {
	kb := Keyboard{
		{status},
		{BtnBalance, BtnCards},
		{BtnAllIncome, BtnAllExpense},
		{BtnPeriodFilter, BtnCategoryFilter},
		{BtnPie, BtnBars},
		{BtnPDF, BtnXLSX, BtnReset},
	}
	if admin {
		kb = append(kb, []string{BtnUsers})
	}
	return kb
}

func adminUserKeyboard() Keyboard {
	return Keyboard{
		{BtnAdminIncome, BtnAdminExpense},
		{BtnBalance},
		{BtnPDF, BtnXLSX},
		{BtnBack},
	}
}

func periodKeyboard() Keyboard {
	p := core.Periods()
	return Keyboard{
		{string(p[0]), string(p[1]), string(p[2])},
		{string(p[3]), string(p[4])},
		{BtnCancel},
	}
}

func resetKeyboard() Keyboard {
	p := core.ResetPolicies()
	return Keyboard{
		{p[0].Label(), p[1].Label()},
		{p[2].Label(), p[3].Label()},
		{p[4].Label()},
		{BtnCancel},
	}
}

// pairs lays labels out two per row and closes with Cancelar.
func pairs(labels []string) Keyboard {
	var kb Keyboard
	for i := 0; i < len(labels); i += 2 {
		end := i + 2
		if end > len(labels) {
			end = len(labels)
		}
		kb = append(kb, append([]string(nil), labels[i:end]...))
	}
	return append(kb, []string{BtnCancel})
}

func usersKeyboard(users []core.User) Keyboard {
	kb := make(Keyboard, 0, len(users)+1)
	for _, u := range users {
		kb = append(kb, []string{userLabel(u)})
	}
	return append(kb, []string{BtnBack})
}

func userLabel(u core.User) string {
	return fmt.Sprintf("%d - %s", u.ID, u.Name)
}
