package core

import (
	"errors"
	"strings"
)

// Default column titles for custom tables created without them.
const (
	DefaultCol1Title = "Columna 1"
	DefaultCol2Title = "Columna 2"
)

type (
	// Expense is one row of a monthly ledger.
	Expense struct {
		ID      string `json:"id"`
		Date    string `json:"date"` // DD/MM label, free text
		Concept string `json:"concept"`
		Income  Amount `json:"income"`
		Expense Amount `json:"expense"`
	}

	HealthItem struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
	}

	Row struct {
		ID   string `json:"id"`
		Val1 string `json:"val1"`
		Val2 string `json:"val2"`
	}

	// CustomTable is a user-defined two-column list scoped to a year.
	CustomTable struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Col1Title string `json:"col1Title"`
		Col2Title string `json:"col2Title"`
		Color     string `json:"color"`
		Icon      string `json:"icon"`
		Rows      []Row  `json:"rows"`
	}

	// AppState is the whole user document. A missing key in any mapping is
	// equivalent to an empty collection.
	AppState struct {
		Expenses     map[string][]Expense         `json:"expenses"`
		Savings      map[string]map[string]Amount `json:"savings"`
		Notes        map[string]string            `json:"notes"`
		MonthlyNotes map[string]string            `json:"monthlyNotes"`
		Health       map[string][]HealthItem      `json:"health"`
		CustomTables map[string][]CustomTable     `json:"customTables"`
	}
)

var (
	ErrEmptyTitle    = errors.New("empty title")
	ErrTableNotFound = errors.New("custom table not found")
	ErrItemNotFound  = errors.New("item not found")
	ErrInvalidAmount = errors.New("invalid amount")
)

// NewAppState returns the default document with all six mappings present and empty.
func NewAppState() AppState {
	return AppState{
		Expenses:     map[string][]Expense{},
		Savings:      map[string]map[string]Amount{},
		Notes:        map[string]string{},
		MonthlyNotes: map[string]string{},
		Health:       map[string][]HealthItem{},
		CustomTables: map[string][]CustomTable{},
	}
}

// Normalize replaces nil mappings with empty ones. Documents written by older
// versions lack monthlyNotes entirely.
func (s AppState) Normalize() AppState {
	if s.Expenses == nil {
		s.Expenses = map[string][]Expense{}
	}
	if s.Savings == nil {
		s.Savings = map[string]map[string]Amount{}
	}
	if s.Notes == nil {
		s.Notes = map[string]string{}
	}
	if s.MonthlyNotes == nil {
		s.MonthlyNotes = map[string]string{}
	}
	if s.Health == nil {
		s.Health = map[string][]HealthItem{}
	}
	if s.CustomTables == nil {
		s.CustomTables = map[string][]CustomTable{}
	}
	return s
}

// NewCustomTable builds a table with default column titles filled in.
func NewCustomTable(id, title, col1, col2, color, icon string) (CustomTable, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return CustomTable{}, ErrEmptyTitle
	}
	t := CustomTable{
		ID:        id,
		Title:     title,
		Col1Title: strings.TrimSpace(col1),
		Col2Title: strings.TrimSpace(col2),
		Color:     color,
		Icon:      icon,
	}
	return t.withDefaults(), nil
}

func (t CustomTable) withDefaults() CustomTable {
	if t.Col1Title == "" {
		t.Col1Title = DefaultCol1Title
	}
	if t.Col2Title == "" {
		t.Col2Title = DefaultCol2Title
	}
	if t.Rows == nil {
		t.Rows = []Row{}
	}
	return t
}

// FindTable returns the table with the given id in a year's list.
func (s AppState) FindTable(year, id string) (CustomTable, bool) {
	for _, t := range s.CustomTables[year] {
		if t.ID == id {
			return t, true
		}
	}
	return CustomTable{}, false
}
