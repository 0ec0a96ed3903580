// Package core provides the domain types of the ledger together with money
// parsing and formatting utilities.
//
// Amounts are exact decimals. Display follows the Brazilian convention:
// period as thousands separator, comma as decimal separator.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseLocaleAmount converts a locale-ambiguous numeral into an exact decimal.
//
// Every '.' is treated as a thousands separator and dropped, then the
// remaining ',' becomes the decimal point. Returns ErrInvalidAmount when the
// result is not a number or is not strictly positive.
//
// Examples:
//
//	ParseLocaleAmount("1.234,56") -> 1234.56
//	ParseLocaleAmount("50")       -> 50
//	ParseLocaleAmount("0")        -> ErrInvalidAmount
func ParseLocaleAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	normalized := strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseFormatted reads back a value produced by FormatValue ("1.234,50").
// Unlike ParseLocaleAmount it accepts zero and negative values.
func ParseFormatted(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", "."))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// FormatValue renders any amount-like value as "1.234,50".
//
// It never fails: nil, unsupported types, NaN and unparsable strings all
// format as "0,00". Strings are read in canonical notation ("1234.5").
func FormatValue(v any) string {
	return formatDecimal(toDecimal(v))
}

// FormatBRL is FormatValue with the currency prefix, "R$ 1.234,50".
func FormatBRL(v any) string {
	return "R$ " + FormatValue(v)
}

func toDecimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case decimal.Decimal:
		return x
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero
		}
		return *x
	case decimal.NullDecimal:
		if !x.Valid {
			return decimal.Zero
		}
		return x.Decimal
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(x)
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat32(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int8:
		return decimal.NewFromInt(int64(x))
	case int16:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt32(x)
	case int64:
		return decimal.NewFromInt(x)
	case uint:
		return toDecimal(strconv.FormatUint(uint64(x), 10))
	case uint8:
		return decimal.NewFromInt(int64(x))
	case uint16:
		return decimal.NewFromInt(int64(x))
	case uint32:
		return decimal.NewFromInt(int64(x))
	case uint64:
		return toDecimal(strconv.FormatUint(x, 10))
	default:
		return decimal.Zero
	}
}

func formatDecimal(d decimal.Decimal) string {
	fixed := d.RoundBank(2).StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	if neg && strings.Trim(fixed, "0.") != "" {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
