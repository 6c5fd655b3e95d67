package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Totals holds income and expense sums. Non-numeric values count as zero.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Diff is income minus expense.
func (t Totals) Diff() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

func (t Totals) add(o Totals) Totals {
	return Totals{Income: t.Income.Add(o.Income), Expense: t.Expense.Add(o.Expense)}
}

// MonthSummary is one line of the annual summary.
type MonthSummary struct {
	Key    string `json:"key"` // YYYY-MM
	Name   string `json:"name"`
	Totals Totals `json:"totals"`
}

// YearSummary is the annual expense overview: twelve months plus totals.
type YearSummary struct {
	Year   string           `json:"year"`
	Months [12]MonthSummary `json:"months"`
	Total  Totals           `json:"total"`
}

// MonthTotals sums a month's expense list.
func MonthTotals(list []Expense) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, e := range list {
		t.Income = t.Income.Add(e.Income.Decimal())
		t.Expense = t.Expense.Add(e.Expense.Decimal())
	}
	return t
}

// AnnualSummary aggregates the twelve month ledgers of a year.
func AnnualSummary(expenses map[string][]Expense, year string) YearSummary {
	ys := YearSummary{Year: year, Total: Totals{Income: decimal.Zero, Expense: decimal.Zero}}
	for i := range ys.Months {
		key := fmt.Sprintf("%s-%02d", year, i+1)
		t := MonthTotals(expenses[key])
		ys.Months[i] = MonthSummary{Key: key, Name: MonthNames[i], Totals: t}
		ys.Total = ys.Total.add(t)
	}
	return ys
}

// SavingsTotal sums every month of a year. Unset months contribute zero.
func SavingsTotal(savings map[string]map[string]Amount, year string) decimal.Decimal {
	total := decimal.Zero
	for _, a := range savings[year] {
		total = total.Add(a.Decimal())
	}
	return total
}

// HealthProgress counts completed items of a year's checklist.
func HealthProgress(items []HealthItem) (done, total int) {
	for _, h := range items {
		if h.Completed {
			done++
		}
	}
	return done, len(items)
}
