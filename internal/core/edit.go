package core

import (
	"maps"
	"slices"
)

// The functions in this file never modify their input. They clone the one
// mapping they touch and share every other mapping with the input document.

// SetNote sets the diary text of a day. An empty text is stored as is.
func SetNote(s AppState, day, text string) AppState {
	s = s.Normalize()
	s.Notes = cloneWith(s.Notes, day, text)
	return s
}

// SetMonthlyNote sets the free text attached to a month.
func SetMonthlyNote(s AppState, month, text string) AppState {
	s = s.Normalize()
	s.MonthlyNotes = cloneWith(s.MonthlyNotes, month, text)
	return s
}

// ReplaceExpenses substitutes the whole expense list of a month.
func ReplaceExpenses(s AppState, month string, list []Expense) AppState {
	s = s.Normalize()
	s.Expenses = cloneWith(s.Expenses, month, list)
	return s
}

// SetSaving sets one savings cell, creating the year when absent.
func SetSaving(s AppState, year, month string, amount Amount) AppState {
	s = s.Normalize()
	months := maps.Clone(s.Savings[year])
	if months == nil {
		months = map[string]Amount{}
	}
	months[month] = amount.finite()
	s.Savings = cloneWith(s.Savings, year, months)
	return s
}

// ReplaceHealth substitutes the whole health checklist of a year.
func ReplaceHealth(s AppState, year string, items []HealthItem) AppState {
	s = s.Normalize()
	s.Health = cloneWith(s.Health, year, items)
	return s
}

// AddCustomTable appends a table to a year's list. Empty column titles get
// their defaults.
func AddCustomTable(s AppState, year string, t CustomTable) AppState {
	s = s.Normalize()
	tables := Appended(s.CustomTables[year], t.withDefaults())
	s.CustomTables = cloneWith(s.CustomTables, year, tables)
	return s
}

// ReplaceTableRows substitutes the rows of the table with the given id.
// Unknown ids leave the list unchanged.
func ReplaceTableRows(s AppState, year, tableID string, rows []Row) AppState {
	s = s.Normalize()
	if rows == nil {
		rows = []Row{}
	}
	tables := Updated(s.CustomTables[year], tableID, tableKey, func(t CustomTable) CustomTable {
		t.Rows = rows
		return t
	})
	s.CustomTables = cloneWith(s.CustomTables, year, tables)
	return s
}

// RemoveCustomTable drops the table with the given id from a year's list.
func RemoveCustomTable(s AppState, year, tableID string) AppState {
	s = s.Normalize()
	tables := Removed(s.CustomTables[year], tableID, tableKey)
	s.CustomTables = cloneWith(s.CustomTables, year, tables)
	return s
}

func cloneWith[V any](m map[string]V, key string, v V) map[string]V {
	out := make(map[string]V, len(m)+1)
	maps.Copy(out, m)
	out[key] = v
	return out
}

// Appended returns a new list with v at the end.
func Appended[T any](list []T, v T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, list...)
	return append(out, v)
}

// Updated returns a new list where the element whose key equals id is
// replaced by fn applied to it.
func Updated[T any](list []T, id string, key func(T) string, fn func(T) T) []T {
	out := slices.Clone(list)
	for i, v := range out {
		if key(v) == id {
			out[i] = fn(v)
		}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

// Removed returns a new list without the elements whose key equals id.
func Removed[T any](list []T, id string, key func(T) string) []T {
	out := make([]T, 0, len(list))
	for _, v := range list {
		if key(v) != id {
			out = append(out, v)
		}
	}
	return out
}

// Contains reports whether an element with the given id is in list.
func Contains[T any](list []T, id string, key func(T) string) bool {
	return slices.ContainsFunc(list, func(v T) bool { return key(v) == id })
}

func expenseKey(e Expense) string   { return e.ID }
func healthKey(h HealthItem) string { return h.ID }
func tableKey(t CustomTable) string { return t.ID }
func rowKey(r Row) string           { return r.ID }

// Expense list operations, each returning a new full list.

func AddExpense(list []Expense, e Expense) []Expense { return Appended(list, e) }

func UpdateExpense(list []Expense, id string, fn func(Expense) Expense) []Expense {
	return Updated(list, id, expenseKey, fn)
}

func DeleteExpense(list []Expense, id string) []Expense { return Removed(list, id, expenseKey) }

func HasExpense(list []Expense, id string) bool { return Contains(list, id, expenseKey) }

// Health list operations.

func AddHealthItem(list []HealthItem, h HealthItem) []HealthItem { return Appended(list, h) }

func ToggleHealthItem(list []HealthItem, id string) []HealthItem {
	return Updated(list, id, healthKey, func(h HealthItem) HealthItem {
		h.Completed = !h.Completed
		return h
	})
}

func DeleteHealthItem(list []HealthItem, id string) []HealthItem {
	return Removed(list, id, healthKey)
}

func HasHealthItem(list []HealthItem, id string) bool { return Contains(list, id, healthKey) }

// Row list operations.

func AddRow(list []Row, r Row) []Row { return Appended(list, r) }

func UpdateRow(list []Row, id string, fn func(Row) Row) []Row {
	return Updated(list, id, rowKey, fn)
}

func DeleteRow(list []Row, id string) []Row { return Removed(list, id, rowKey) }

func HasRow(list []Row, id string) bool { return Contains(list, id, rowKey) }
