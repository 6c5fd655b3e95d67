package core

import (
	"encoding/json"
	"testing"
)

func TestNewAppStateHasAllMappings(t *testing.T) {
	s := NewAppState()
	if s.Expenses == nil || s.Savings == nil || s.Notes == nil ||
		s.MonthlyNotes == nil || s.Health == nil || s.CustomTables == nil {
		t.Fatalf("expected all mappings present, got %+v", s)
	}

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"expenses":{},"savings":{},"notes":{},"monthlyNotes":{},"health":{},"customTables":{}}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}

func TestNormalizeFillsMissingMappings(t *testing.T) {
	var s AppState
	if err := json.Unmarshal([]byte(`{"expenses":{},"notes":{"2024-01-01":"x"}}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	s = s.Normalize()
	if s.MonthlyNotes == nil || s.Health == nil || s.CustomTables == nil || s.Savings == nil {
		t.Fatalf("normalize left nil mappings: %+v", s)
	}
	if s.Notes["2024-01-01"] != "x" {
		t.Fatalf("normalize dropped existing data")
	}
}

func TestNewCustomTable(t *testing.T) {
	tbl, err := NewCustomTable("1", " Lecturas ", "", "  ", "#000", "book")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Title != "Lecturas" || tbl.Col1Title != DefaultCol1Title || tbl.Col2Title != DefaultCol2Title {
		t.Fatalf("unexpected table: %+v", tbl)
	}
	if tbl.Rows == nil {
		t.Fatalf("expected empty, non-nil rows")
	}

	if _, err := NewCustomTable("2", "   ", "a", "b", "", ""); err != ErrEmptyTitle {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestFindTable(t *testing.T) {
	s := AddCustomTable(NewAppState(), "2024", CustomTable{ID: "a", Title: "A"})
	if _, ok := s.FindTable("2024", "a"); !ok {
		t.Fatalf("expected to find table a")
	}
	if _, ok := s.FindTable("2024", "b"); ok {
		t.Fatalf("did not expect table b")
	}
	if _, ok := s.FindTable("2023", "a"); ok {
		t.Fatalf("did not expect table a in 2023")
	}
}
