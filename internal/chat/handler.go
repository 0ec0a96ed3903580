package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"financas/internal/core"
	"financas/internal/report"
	"financas/internal/services"
	"financas/internal/session"
)

// Ledger is the part of *services.LedgerService the conversation uses.
type Ledger interface {
	Record(ctx context.Context, owner int64, ownerName, text string) (services.Recorded, error)
	Balance(ctx context.Context, owner int64, r core.Range) (core.Balance, error)
	OverallBalance(ctx context.Context, owner int64) (core.Balance, error)
	Statement(ctx context.Context, owner int64, kind core.Kind, r core.Range) ([]core.Transaction, error)
	PeriodSummary(ctx context.Context, owner int64, p core.Period) (services.Summary, error)
	ByCategory(ctx context.Context, owner int64, category string) (services.Summary, error)
	Categories(ctx context.Context, owner int64) ([]string, error)
	SpendingByCategory(ctx context.Context, owner int64, r core.Range) ([]core.CategoryAmount, error)
	SpendingByCard(ctx context.Context, owner int64) ([]core.CategoryAmount, error)
	MonthlySeries(ctx context.Context, owner int64, n int) ([]core.MonthTotals, error)
	Reset(ctx context.Context, owner int64, policy core.DeletePolicy) (int, error)
	Users(ctx context.Context) ([]core.User, error)
}

var _ Ledger = (*services.LedgerService)(nil)

type Handler struct {
	ledger   Ledger
	sessions *session.Store
	reports  *report.Reporter
	adminID  int64
}

// NewHandler builds the conversation. adminID 0 disables the admin menu.
func NewHandler(ledger Ledger, sessions *session.Store, reports *report.Reporter, adminID int64) *Handler {
	return &Handler{ledger: ledger, sessions: sessions, reports: reports, adminID: adminID}
}

// Handle answers one message. Failures are logged and turned into an
// apologetic reply, so Handle always returns something to send.
func (h *Handler) Handle(ctx context.Context, m Message) Reply {
	reply, err := h.route(ctx, m)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to handle message",
			"chat_id", m.ChatID,
			"owner_id", m.UserID,
			"error", err)
		h.sessions.Reset(m.ChatID)
		reply = h.menu(ctx, m.UserID, msgFailure)
	}
	return reply
}

func (h *Handler) isAdmin(user int64) bool {
	return h.adminID != 0 && user == h.adminID
}

func (h *Handler) route(ctx context.Context, m Message) (Reply, error) {
	text := strings.TrimSpace(m.Text)
	sess := h.sessions.Get(m.ChatID)

	if text == "/start" {
		h.sessions.Reset(m.ChatID)
		return h.menu(ctx, m.UserID, fmt.Sprintf(msgGreeting, m.UserName)), nil
	}

	switch sess.State {
	case session.AwaitingCategoryFilter:
		h.sessions.Reset(m.ChatID)
		if core.EqualFold(text, BtnCancel) {
			return h.menu(ctx, m.UserID, msgCategoryCanceled), nil
		}
		return h.categorySummary(ctx, m.UserID, text)

	case session.AwaitingPeriodFilter:
		h.sessions.Reset(m.ChatID)
		p, ok := core.ParsePeriod(text)
		if !ok {
			return h.menu(ctx, m.UserID, msgFilterCancelled), nil
		}
		return h.periodSummary(ctx, m.UserID, p)

	case session.AwaitingResetPolicy:
		h.sessions.Reset(m.ChatID)
		p, ok := core.ParseResetLabel(text)
		if !ok {
			return h.menu(ctx, m.UserID, msgResetCancelled), nil
		}
		if _, err := h.ledger.Reset(ctx, m.UserID, p); err != nil {
			return Reply{}, err
		}
		return h.menu(ctx, m.UserID, fmt.Sprintf(msgRemoved, text)), nil

	case session.AdminManaging:
		if h.isAdmin(m.UserID) {
			return h.manage(ctx, m, sess.Target, text)
		}
		h.sessions.Reset(m.ChatID)
	}

	if text == BtnCancel {
		return h.menu(ctx, m.UserID, msgCancelled), nil
	}
	if text == BtnBack && h.isAdmin(m.UserID) {
		return h.menu(ctx, m.UserID, msgBackToMenu), nil
	}

	switch text {
	case BtnBalance:
		b, err := h.ledger.OverallBalance(ctx, m.UserID)
		if err != nil {
			return Reply{}, err
		}
		return h.menuWith(m.UserID, b, report.BalanceText(b)), nil

	case BtnCards:
		items, err := h.ledger.SpendingByCard(ctx, m.UserID)
		if err != nil {
			return Reply{}, err
		}
		return h.menu(ctx, m.UserID, report.CardsText(items)), nil

	case BtnAllIncome:
		return h.list(ctx, m.UserID, core.Income, "💰 Entradas:", msgNoIncome)

	case BtnAllExpense:
		return h.list(ctx, m.UserID, core.Expense, "💸 Saídas:", msgNoExpense)

	case BtnPeriodFilter:
		h.sessions.Set(m.ChatID, session.Session{State: session.AwaitingPeriodFilter})
		return Reply{Text: msgChoosePeriod, Keyboard: periodKeyboard(), OneTime: true}, nil

	case BtnCategoryFilter:
		cats, err := h.ledger.Categories(ctx, m.UserID)
		if err != nil {
			return Reply{}, err
		}
		if len(cats) == 0 {
			return h.menu(ctx, m.UserID, msgNoCategories), nil
		}
		h.sessions.Set(m.ChatID, session.Session{State: session.AwaitingCategoryFilter})
		return Reply{Text: msgChooseCategory, Keyboard: pairs(cats), OneTime: true}, nil

	case BtnReset:
		h.sessions.Set(m.ChatID, session.Session{State: session.AwaitingResetPolicy})
		return Reply{Text: msgChooseReset, Keyboard: resetKeyboard(), OneTime: true}, nil

	case BtnPie:
		return h.pie(ctx, m.UserID)

	case BtnBars:
		return h.bars(ctx, m.UserID)

	case BtnPDF:
		return h.document(ctx, m.UserID, "relatorio.pdf", "", h.reports.PDF, h.main)

	case BtnXLSX:
		return h.document(ctx, m.UserID, "relatorio.xlsx", "", h.reports.XLSX, h.main)

	case BtnUsers:
		if h.isAdmin(m.UserID) {
			return h.users(ctx, m.UserID)
		}
	}

	if h.isAdmin(m.UserID) {
		if u, ok := parseUserLabel(text); ok {
			h.sessions.Set(m.ChatID, session.Session{State: session.AdminManaging, Target: u})
			return Reply{Text: fmt.Sprintf(msgManaging, u.Name), Keyboard: adminUserKeyboard()}, nil
		}
	}

	return h.record(ctx, m)
}

func (h *Handler) record(ctx context.Context, m Message) (Reply, error) {
	rec, err := h.ledger.Record(ctx, m.UserID, m.UserName, m.Text)
	if errors.Is(err, services.ErrNotUnderstood) {
		return h.menu(ctx, m.UserID, msgNotUnderstood), nil
	}
	if err != nil {
		return Reply{}, err
	}
	return h.menu(ctx, m.UserID, report.RecordedText(rec)), nil
}

// menu wraps text with the main keyboard, whose first row shows the owner's
// financial health.
func (h *Handler) menu(ctx context.Context, owner int64, text string) Reply {
	b, err := h.ledger.OverallBalance(ctx, owner)
	if err != nil {
		slog.WarnContext(ctx, "Failed to compute keyboard status", "owner_id", owner, "error", err)
	}
	return h.menuWith(owner, b, text)
}

func (h *Handler) menuWith(owner int64, b core.Balance, text string) Reply {
	return Reply{Text: text, Keyboard: mainKeyboard(report.StatusLine(b), h.isAdmin(owner))}
}

func (h *Handler) main(ctx context.Context, owner int64) Keyboard {
	return h.menu(ctx, owner, "").Keyboard
}

func (h *Handler) periodSummary(ctx context.Context, owner int64, p core.Period) (Reply, error) {
	s, err := h.ledger.PeriodSummary(ctx, owner, p)
	if err != nil {
		return Reply{}, err
	}
	r := h.menu(ctx, owner, h.reports.SummaryText(report.PeriodStatement, s))
	r.Markdown = true
	return r, nil
}

func (h *Handler) categorySummary(ctx context.Context, owner int64, category string) (Reply, error) {
	s, err := h.ledger.ByCategory(ctx, owner, category)
	if err != nil {
		return Reply{}, err
	}
	r := h.menu(ctx, owner, h.reports.SummaryText(report.CategoryStatement, s))
	r.Markdown = true
	return r, nil
}

func (h *Handler) list(ctx context.Context, owner int64, kind core.Kind, header, empty string) (Reply, error) {
	ts, err := h.ledger.Statement(ctx, owner, kind, core.All)
	if err != nil {
		return Reply{}, err
	}
	if len(ts) == 0 {
		return h.menu(ctx, owner, empty), nil
	}
	return h.menu(ctx, owner, h.reports.List(header, ts, false)), nil
}

func (h *Handler) pie(ctx context.Context, owner int64) (Reply, error) {
	items, err := h.ledger.SpendingByCategory(ctx, owner, core.All)
	if err != nil {
		return Reply{}, err
	}
	png, err := report.PieChart(items)
	if err != nil {
		return Reply{}, err
	}
	if png == nil {
		return h.menu(ctx, owner, msgNoExpenseChart), nil
	}
	r := h.menu(ctx, owner, "")
	r.Attachment = &Attachment{Kind: Photo, FileName: "pizza.png", Data: png, Caption: msgPieCaption}
	return r, nil
}

func (h *Handler) bars(ctx context.Context, owner int64) (Reply, error) {
	series, err := h.ledger.MonthlySeries(ctx, owner, services.DefaultMonths)
	if err != nil {
		return Reply{}, err
	}
	png, err := report.BarChart(series)
	if err != nil {
		return Reply{}, err
	}
	if png == nil {
		return h.menu(ctx, owner, msgNoTransactions), nil
	}
	r := h.menu(ctx, owner, "")
	r.Attachment = &Attachment{Kind: Photo, FileName: "barras.png", Data: png, Caption: msgBarsCaption}
	return r, nil
}

// reportDocument loads everything needed for a PDF or XLSX of owner.
func (h *Handler) reportDocument(ctx context.Context, owner int64) (report.Document, error) {
	b, err := h.ledger.Balance(ctx, owner, core.All)
	if err != nil {
		return report.Document{}, err
	}
	income, err := h.ledger.Statement(ctx, owner, core.Income, core.All)
	if err != nil {
		return report.Document{}, err
	}
	expense, err := h.ledger.Statement(ctx, owner, core.Expense, core.All)
	if err != nil {
		return report.Document{}, err
	}
	return report.Document{Balance: b, Income: income, Expense: expense}, nil
}

func (h *Handler) document(
	ctx context.Context,
	owner int64,
	name, caption string,
	render func(report.Document) ([]byte, error),
	keyboard func(context.Context, int64) Keyboard,
) (Reply, error) {
	doc, err := h.reportDocument(ctx, owner)
	if err != nil {
		return Reply{}, err
	}
	data, err := render(doc)
	if err != nil {
		return Reply{}, err
	}
	return Reply{
		Keyboard:   keyboard(ctx, owner),
		Attachment: &Attachment{Kind: Document, FileName: name, Data: data, Caption: caption},
	}, nil
}

func (h *Handler) users(ctx context.Context, admin int64) (Reply, error) {
	users, err := h.ledger.Users(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(users) == 0 {
		return h.menu(ctx, admin, msgNoUsers), nil
	}
	return Reply{Text: msgManageUser, Keyboard: usersKeyboard(users), OneTime: true}, nil
}

// manage handles the admin menu for the selected user.
func (h *Handler) manage(ctx context.Context, m Message, target core.User, text string) (Reply, error) {
	adminKeyboard := func(context.Context, int64) Keyboard { return adminUserKeyboard() }
	stay := func(s string) Reply { return Reply{Text: s, Keyboard: adminUserKeyboard()} }

	switch text {
	case BtnBack:
		h.sessions.Reset(m.ChatID)
		return h.menu(ctx, m.UserID, msgBackToMenu), nil

	case BtnCancel:
		h.sessions.Reset(m.ChatID)
		return h.menu(ctx, m.UserID, msgCancelled), nil

	case BtnAdminIncome, BtnAdminExpense:
		kind, header, empty := core.Income, "💰 Entradas de "+target.Name, target.Name+" não tem entradas."
		if text == BtnAdminExpense {
			kind, header, empty = core.Expense, "💸 Saídas de "+target.Name, target.Name+" não tem saídas."
		}
		ts, err := h.ledger.Statement(ctx, target.ID, kind, core.All)
		if err != nil {
			return Reply{}, err
		}
		if len(ts) == 0 {
			return stay(empty), nil
		}
		return stay(h.reports.List(header, ts, true)), nil

	case BtnBalance:
		b, err := h.ledger.Balance(ctx, target.ID, core.All)
		if err != nil {
			return Reply{}, err
		}
		return stay(report.OwnerBalanceText(target.Name, b)), nil

	case BtnPDF:
		return h.document(ctx, target.ID, fmt.Sprintf("rel_%d.pdf", target.ID), "PDF de "+target.Name, h.reports.PDF, adminKeyboard)

	case BtnXLSX:
		return h.document(ctx, target.ID, fmt.Sprintf("rel_%d.xlsx", target.ID), "XLSX de "+target.Name, h.reports.XLSX, adminKeyboard)
	}
	return stay(msgInvalid), nil
}

// parseUserLabel reads the "id - name" buttons of the users keyboard.
func parseUserLabel(text string) (core.User, bool) {
	idPart, name, ok := strings.Cut(text, " - ")
	if !ok {
		return core.User{}, false
	}
	for _, r := range idPart {
		if r < '0' || r > '9' {
			return core.User{}, false
		}
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id == 0 {
		return core.User{}, false
	}
	return core.User{ID: id, Name: name}, true
}
