package interpret

import (
	"regexp"

	"github.com/shopspring/decimal"

	"financas/internal/core"
)

var numeral = regexp.MustCompile(`\d[\d.,]*`)

// extractAmount finds the first numeral in text and returns its value and
// the exact substring it was read from. ok is false when there is no numeral
// or the value is not strictly positive.
func extractAmount(text string) (amount decimal.Decimal, raw string, ok bool) {
	loc := numeral.FindStringIndex(text)
	if loc == nil {
		return decimal.Zero, "", false
	}
	raw = text[loc[0]:loc[1]]
	if loc[0] > 0 && text[loc[0]-1] == '-' {
		return decimal.Zero, raw, false
	}
	amount, err := core.ParseLocaleAmount(raw)
	if err != nil {
		return decimal.Zero, raw, false
	}
	return amount, raw, true
}
