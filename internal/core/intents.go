package core

// Edit is a named, parameterized request to transform the document.
type Edit interface {
	Name() string
	Apply(AppState) AppState
}

type (
	SetNoteEdit struct {
		Day  string
		Text string
	}

	SetMonthlyNoteEdit struct {
		Month string
		Text  string
	}

	ReplaceExpensesEdit struct {
		Month    string
		Expenses []Expense
	}

	SetSavingEdit struct {
		Year   string
		Month  string
		Amount Amount
	}

	ReplaceHealthEdit struct {
		Year  string
		Items []HealthItem
	}

	AddCustomTableEdit struct {
		Year  string
		Table CustomTable
	}

	ReplaceTableRowsEdit struct {
		Year    string
		TableID string
		Rows    []Row
	}

	RemoveCustomTableEdit struct {
		Year    string
		TableID string
	}
)

func (SetNoteEdit) Name() string           { return "set_note" }
func (SetMonthlyNoteEdit) Name() string    { return "set_monthly_note" }
func (ReplaceExpensesEdit) Name() string   { return "replace_expenses" }
func (SetSavingEdit) Name() string         { return "set_saving" }
func (ReplaceHealthEdit) Name() string     { return "replace_health" }
func (AddCustomTableEdit) Name() string    { return "add_custom_table" }
func (ReplaceTableRowsEdit) Name() string  { return "replace_table_rows" }
func (RemoveCustomTableEdit) Name() string { return "remove_custom_table" }

func (e SetNoteEdit) Apply(s AppState) AppState { return SetNote(s, e.Day, e.Text) }

func (e SetMonthlyNoteEdit) Apply(s AppState) AppState {
	return SetMonthlyNote(s, e.Month, e.Text)
}

func (e ReplaceExpensesEdit) Apply(s AppState) AppState {
	return ReplaceExpenses(s, e.Month, e.Expenses)
}

func (e SetSavingEdit) Apply(s AppState) AppState {
	return SetSaving(s, e.Year, e.Month, e.Amount)
}

func (e ReplaceHealthEdit) Apply(s AppState) AppState {
	return ReplaceHealth(s, e.Year, e.Items)
}

func (e AddCustomTableEdit) Apply(s AppState) AppState {
	return AddCustomTable(s, e.Year, e.Table)
}

func (e ReplaceTableRowsEdit) Apply(s AppState) AppState {
	return ReplaceTableRows(s, e.Year, e.TableID, e.Rows)
}

func (e RemoveCustomTableEdit) Apply(s AppState) AppState {
	return RemoveCustomTable(s, e.Year, e.TableID)
}

// TouchesExpenses reports whether applying e can change expense totals.
func TouchesExpenses(e Edit) bool {
	_, ok := e.(ReplaceExpensesEdit)
	return ok
}
