package core

import "github.com/shopspring/decimal"

// HealthStatus is the coarse verdict shown on the main keyboard.
type HealthStatus int

const (
	Healthy HealthStatus = iota
	HighSpending
	Negative
)

var highSpendingRatio = decimal.RequireFromString("0.7")

// Balance aggregates an owner's income and expenses over a range.
type Balance struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func (b Balance) Net() decimal.Decimal {
	return b.Income.Sub(b.Expense)
}

// Status is Negative when expenses exceed income, HighSpending when they
// pass 70% of a positive income, Healthy otherwise.
func (b Balance) Status() HealthStatus {
	if b.Net().IsNegative() {
		return Negative
	}
	if b.Income.IsPositive() && b.Expense.Div(b.Income).GreaterThan(highSpendingRatio) {
		return HighSpending
	}
	return Healthy
}

// CategoryAmount represents an amount aggregated by a label (category or card).
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// MonthTotals is one bar pair of the income vs. expense chart.
type MonthTotals struct {
	Label   string
	Income  decimal.Decimal
	Expense decimal.Decimal
}
