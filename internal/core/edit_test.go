package core

import (
	"reflect"
	"testing"
)

func mapPtr(m any) uintptr { return reflect.ValueOf(m).Pointer() }

func seeded() AppState {
	s := NewAppState()
	s.Expenses["2024-05"] = []Expense{{ID: "e1", Concept: "Rent", Expense: 500}}
	s.Savings["2024"] = map[string]Amount{"Enero": 100}
	s.Notes["2024-05-01"] = "hola"
	s.MonthlyNotes["2024-05"] = "mayo"
	s.Health["2024"] = []HealthItem{{ID: "h1", Title: "Dentista"}}
	s.CustomTables["2024"] = []CustomTable{{ID: "t1", Title: "Libros", Rows: []Row{}}}
	return s
}

type pointers struct {
	expenses, savings, notes, monthly, health, tables uintptr
}

func pointersOf(s AppState) pointers {
	return pointers{
		expenses: mapPtr(s.Expenses),
		savings:  mapPtr(s.Savings),
		notes:    mapPtr(s.Notes),
		monthly:  mapPtr(s.MonthlyNotes),
		health:   mapPtr(s.Health),
		tables:   mapPtr(s.CustomTables),
	}
}

func TestEditsShareUntouchedMappings(t *testing.T) {
	tests := []struct {
		name    string
		edit    Edit
		touched string
		check   func(t *testing.T, s AppState)
	}{
		{
			name:    "set note",
			edit:    SetNoteEdit{Day: "2024-05-02", Text: "nuevo"},
			touched: "notes",
			check: func(t *testing.T, s AppState) {
				if s.Notes["2024-05-02"] != "nuevo" || s.Notes["2024-05-01"] != "hola" {
					t.Fatalf("unexpected notes: %v", s.Notes)
				}
			},
		},
		{
			name:    "empty note is kept",
			edit:    SetNoteEdit{Day: "2024-05-01", Text: ""},
			touched: "notes",
			check: func(t *testing.T, s AppState) {
				v, ok := s.Notes["2024-05-01"]
				if !ok || v != "" {
					t.Fatalf("expected empty note present, got %q ok=%v", v, ok)
				}
			},
		},
		{
			name:    "set monthly note",
			edit:    SetMonthlyNoteEdit{Month: "2024-06", Text: "junio"},
			touched: "monthly",
			check: func(t *testing.T, s AppState) {
				if s.MonthlyNotes["2024-06"] != "junio" {
					t.Fatalf("unexpected monthly notes: %v", s.MonthlyNotes)
				}
			},
		},
		{
			name:    "replace expenses",
			edit:    ReplaceExpensesEdit{Month: "2024-05", Expenses: []Expense{{ID: "e2", Income: 10}}},
			touched: "expenses",
			check: func(t *testing.T, s AppState) {
				if len(s.Expenses["2024-05"]) != 1 || s.Expenses["2024-05"][0].ID != "e2" {
					t.Fatalf("unexpected expenses: %v", s.Expenses)
				}
			},
		},
		{
			name:    "set saving in new year",
			edit:    SetSavingEdit{Year: "2025", Month: "Marzo", Amount: 40},
			touched: "savings",
			check: func(t *testing.T, s AppState) {
				if s.Savings["2025"]["Marzo"] != 40 || s.Savings["2024"]["Enero"] != 100 {
					t.Fatalf("unexpected savings: %v", s.Savings)
				}
			},
		},
		{
			name:    "replace health",
			edit:    ReplaceHealthEdit{Year: "2024", Items: nil},
			touched: "health",
			check: func(t *testing.T, s AppState) {
				if len(s.Health["2024"]) != 0 {
					t.Fatalf("unexpected health: %v", s.Health)
				}
			},
		},
		{
			name:    "add custom table",
			edit:    AddCustomTableEdit{Year: "2024", Table: CustomTable{ID: "t2", Title: "Pelis"}},
			touched: "tables",
			check: func(t *testing.T, s AppState) {
				tbl, ok := s.FindTable("2024", "t2")
				if !ok || tbl.Col1Title != DefaultCol1Title || tbl.Col2Title != DefaultCol2Title {
					t.Fatalf("unexpected table: %+v ok=%v", tbl, ok)
				}
				if len(s.CustomTables["2024"]) != 2 {
					t.Fatalf("expected 2 tables, got %d", len(s.CustomTables["2024"]))
				}
			},
		},
		{
			name:    "replace table rows",
			edit:    ReplaceTableRowsEdit{Year: "2024", TableID: "t1", Rows: []Row{{ID: "r1", Val1: "x"}}},
			touched: "tables",
			check: func(t *testing.T, s AppState) {
				tbl, _ := s.FindTable("2024", "t1")
				if len(tbl.Rows) != 1 || tbl.Rows[0].Val1 != "x" {
					t.Fatalf("unexpected rows: %+v", tbl.Rows)
				}
			},
		},
		{
			name:    "remove custom table",
			edit:    RemoveCustomTableEdit{Year: "2024", TableID: "t1"},
			touched: "tables",
			check: func(t *testing.T, s AppState) {
				if _, ok := s.FindTable("2024", "t1"); ok {
					t.Fatalf("table t1 still present")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := seeded()
			bp := pointersOf(before)
			after := tt.edit.Apply(before)
			tt.check(t, after)

			ap := pointersOf(after)
			fields := map[string][2]uintptr{
				"expenses": {bp.expenses, ap.expenses},
				"savings":  {bp.savings, ap.savings},
				"notes":    {bp.notes, ap.notes},
				"monthly":  {bp.monthly, ap.monthly},
				"health":   {bp.health, ap.health},
				"tables":   {bp.tables, ap.tables},
			}
			for name, p := range fields {
				if name == tt.touched {
					if p[0] == p[1] {
						t.Fatalf("%s: touched mapping was modified in place", name)
					}
					continue
				}
				if p[0] != p[1] {
					t.Fatalf("%s: untouched mapping was copied", name)
				}
			}

			if !reflect.DeepEqual(before, seeded()) {
				t.Fatalf("input document was mutated")
			}
		})
	}
}

func TestSetSavingDoesNotMutateYearMap(t *testing.T) {
	s := seeded()
	year := s.Savings["2024"]
	out := SetSaving(s, "2024", "Febrero", 800)
	if _, ok := year["Febrero"]; ok {
		t.Fatalf("input year map was mutated")
	}
	if out.Savings["2024"]["Enero"] != 100 || out.Savings["2024"]["Febrero"] != 800 {
		t.Fatalf("unexpected year map: %v", out.Savings["2024"])
	}
}

func TestEditsOnZeroDocument(t *testing.T) {
	var s AppState
	s = SetNote(s, "2024-01-01", "x")
	if s.Expenses == nil || s.Notes["2024-01-01"] != "x" {
		t.Fatalf("expected normalized document, got %+v", s)
	}
}

func TestExpenseListOperations(t *testing.T) {
	list := []Expense{{ID: "a", Concept: "A"}, {ID: "b", Concept: "B"}}

	added := AddExpense(list, Expense{ID: "c"})
	if len(added) != 3 || len(list) != 2 {
		t.Fatalf("append changed input or failed: %v %v", list, added)
	}

	updated := UpdateExpense(list, "b", func(e Expense) Expense {
		e.Concept = "Bee"
		return e
	})
	if updated[1].Concept != "Bee" || list[1].Concept != "B" {
		t.Fatalf("update changed input or failed: %v %v", list, updated)
	}

	deleted := DeleteExpense(list, "a")
	if len(deleted) != 1 || deleted[0].ID != "b" || len(list) != 2 {
		t.Fatalf("delete changed input or failed: %v %v", list, deleted)
	}

	if !HasExpense(list, "a") || HasExpense(list, "z") {
		t.Fatalf("unexpected HasExpense result")
	}
}

func TestHealthListOperations(t *testing.T) {
	list := AddHealthItem(nil, HealthItem{ID: "h1", Title: "Análisis"})
	toggled := ToggleHealthItem(list, "h1")
	if !toggled[0].Completed || list[0].Completed {
		t.Fatalf("toggle changed input or failed")
	}
	if got := ToggleHealthItem(toggled, "h1"); got[0].Completed {
		t.Fatalf("second toggle should uncomplete")
	}
	if got := DeleteHealthItem(list, "h1"); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestRowListOperations(t *testing.T) {
	rows := AddRow(nil, Row{ID: "r1"})
	rows = UpdateRow(rows, "r1", func(r Row) Row {
		r.Val1, r.Val2 = "x", "y"
		return r
	})
	if rows[0].Val1 != "x" || rows[0].Val2 != "y" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	if !HasRow(rows, "r1") {
		t.Fatalf("expected row r1")
	}
	if got := DeleteRow(rows, "r1"); len(got) != 0 {
		t.Fatalf("expected no rows, got %v", got)
	}
}

func TestTouchesExpenses(t *testing.T) {
	if !TouchesExpenses(ReplaceExpensesEdit{}) {
		t.Fatalf("expected expense edit to touch expenses")
	}
	if TouchesExpenses(SetNoteEdit{}) {
		t.Fatalf("did not expect note edit to touch expenses")
	}
}
