package report

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"financas/internal/core"
)

var (
	incomeColor  = drawing.ColorFromHex("2e7d32")
	expenseColor = drawing.ColorFromHex("c62828")
)

// PieChart renders spending per category as PNG. It returns nil when there
// is nothing to draw.
func PieChart(items []core.CategoryAmount) ([]byte, error) {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	if !total.IsPositive() {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(items))
	for _, it := range items {
		if !it.Amount.IsPositive() {
			continue
		}
		pct := it.Amount.Div(total).Mul(decimal.NewFromInt(100)).StringFixed(1)
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%s%%)", it.Name, pct),
			Value: it.Amount.InexactFloat64(),
		})
	}

	pie := chart.PieChart{
		Title:  "Gastos por Categoria",
		Width:  640,
		Height: 640,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

// BarChart renders income next to expenses for each month as PNG. It
// returns nil when every month is empty.
func BarChart(series []core.MonthTotals) ([]byte, error) {
	empty := true
	bars := make([]chart.Value, 0, 2*len(series))
	for _, m := range series {
		if m.Income.IsPositive() || m.Expense.IsPositive() {
			empty = false
		}
		bars = append(bars,
			chart.Value{
				Label: m.Label,
				Value: m.Income.InexactFloat64(),
				Style: chart.Style{FillColor: incomeColor, StrokeColor: incomeColor},
			},
			chart.Value{
				Value: m.Expense.InexactFloat64(),
				Style: chart.Style{FillColor: expenseColor, StrokeColor: expenseColor},
			},
		)
	}
	if empty {
		return nil, nil
	}

	bc := chart.BarChart{
		Title:      "Entradas x Gastos por Mês",
		Width:      1024,
		Height:     512,
		BarWidth:   30,
		BarSpacing: 12,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}
