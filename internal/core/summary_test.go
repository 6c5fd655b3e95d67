package core

import (
	"testing"
	"time"
)

func TestMonthTotalsRentScenario(t *testing.T) {
	s := NewAppState()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	month := MonthKey(day)
	list := AddExpense(s.Expenses[month], Expense{ID: "1", Date: DateLabel(day), Concept: "Rent", Income: 0, Expense: 500})
	s = ReplaceExpenses(s, month, list)

	if month != "2024-05" || s.Expenses["2024-05"][0].Date != "01/05" {
		t.Fatalf("unexpected keys: month=%s label=%s", month, s.Expenses["2024-05"][0].Date)
	}

	tot := MonthTotals(s.Expenses["2024-05"])
	if tot.Expense.String() != "500" || !tot.Income.IsZero() {
		t.Fatalf("unexpected totals: income=%s expense=%s", tot.Income, tot.Expense)
	}
	if tot.Diff().String() != "-500" {
		t.Fatalf("unexpected diff %s", tot.Diff())
	}
}

func TestMonthTotalsEmpty(t *testing.T) {
	tot := MonthTotals(nil)
	if !tot.Income.IsZero() || !tot.Expense.IsZero() || !tot.Diff().IsZero() {
		t.Fatalf("expected zero totals, got %+v", tot)
	}
}

func TestSavingsTotal(t *testing.T) {
	s := NewAppState()
	s = SetSaving(s, "2024", "Enero", 1200)
	s = SetSaving(s, "2024", "Febrero", 800)
	if got := SavingsTotal(s.Savings, "2024"); got.String() != "2000" {
		t.Fatalf("expected 2000, got %s", got)
	}
	if got := SavingsTotal(s.Savings, "2023"); !got.IsZero() {
		t.Fatalf("expected zero for unset year, got %s", got)
	}
}

func TestAnnualSummary(t *testing.T) {
	s := NewAppState()
	s = ReplaceExpenses(s, "2024-01", []Expense{{ID: "1", Income: 1000, Expense: 200}})
	s = ReplaceExpenses(s, "2024-12", []Expense{{ID: "2", Income: 0, Expense: 50.5}})
	s = ReplaceExpenses(s, "2023-12", []Expense{{ID: "3", Income: 9999}})

	ys := AnnualSummary(s.Expenses, "2024")
	if ys.Months[0].Key != "2024-01" || ys.Months[0].Name != "Enero" {
		t.Fatalf("unexpected first month: %+v", ys.Months[0])
	}
	if ys.Months[11].Totals.Expense.String() != "50.5" {
		t.Fatalf("unexpected december expense: %s", ys.Months[11].Totals.Expense)
	}
	if ys.Total.Income.String() != "1000" || ys.Total.Expense.String() != "250.5" {
		t.Fatalf("unexpected totals: %s / %s", ys.Total.Income, ys.Total.Expense)
	}
	if ys.Total.Diff().String() != "749.5" {
		t.Fatalf("unexpected diff: %s", ys.Total.Diff())
	}
}

func TestHealthProgress(t *testing.T) {
	done, total := HealthProgress([]HealthItem{{ID: "1", Completed: true}, {ID: "2"}})
	if done != 1 || total != 2 {
		t.Fatalf("expected 1/2, got %d/%d", done, total)
	}
}
