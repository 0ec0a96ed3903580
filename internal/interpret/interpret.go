// Package interpret turns a free-text chat message into a transaction intent.
//
// The engine is keyword and regex driven: the first number is the amount, a
// card brand or the word "cartão" selects the payment instrument, and an
// ordered keyword table decides the kind and category. All tables are built
// at package initialization and the functions here are safe for concurrent
// use.
package interpret

import (
	"strings"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

// Action tells the caller what to do with a message.
type Action int

const (
	Unrecognized Action = iota
	Add
)

func (a Action) String() string {
	switch a {
	case Add:
		return "add"
	default:
		return "unrecognized"
	}
}

// Result is the outcome of interpreting one message. Fields other than
// Action are meaningful only when Action is Add.
type Result struct {
	Action    Action
	Kind      core.Kind
	Amount    decimal.Decimal
	RawAmount string
	Category  string
	Method    core.Method
	Card      string
}

// Recognized reports whether the message produced a transaction intent.
func (r Result) Recognized() bool {
	return r.Action == Add
}

// Transaction converts a recognized result into a record ready to persist.
func (r Result) Transaction(owner int64, ownerName, description string) core.NewTransaction {
	return core.NewTransaction{
		OwnerID:     owner,
		OwnerName:   ownerName,
		Kind:        r.Kind,
		Amount:      r.Amount,
		RawAmount:   r.RawAmount,
		Category:    r.Category,
		Method:      r.Method,
		Card:        r.Card,
		Description: description,
	}
}

// Interpret classifies text. It never fails: anything without a positive
// amount comes back as Unrecognized.
func Interpret(text string) Result {
	lowered := core.Lower(strings.TrimSpace(text))

	amount, raw, ok := extractAmount(lowered)
	if !ok {
		return Result{Action: Unrecognized}
	}

	words := wordsWithout(lowered, raw)
	method, card := classifyInstrument(words)
	kind := classifyKind(words)

	return Result{
		Action:    Add,
		Kind:      kind,
		Amount:    amount,
		RawAmount: raw,
		Category:  classifyCategory(words, kind, card),
		Method:    method,
		Card:      card,
	}
}

// wordsWithout splits text on whitespace and drops every token containing
// raw, which removes the amount token together with any prefix like "r$50".
func wordsWithout(text, raw string) []string {
	fields := strings.Fields(text)
	words := fields[:0]
	for _, f := range fields {
		if !strings.Contains(f, raw) {
			words = append(words, f)
		}
	}
	return words
}
