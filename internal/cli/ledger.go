package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"

	"notebk/internal/core"
	"notebk/internal/services"
)

type expenseCmd struct {
	env     *Env
	month   string
	date    string
	concept string
	income  string
	expense string
}

func (*expenseCmd) Name() string     { return "expense" }
func (*expenseCmd) Synopsis() string { return "list, add or delete rows of a monthly ledger" }
func (*expenseCmd) Usage() string {
	return `notebk expense [-m <YYYY-MM>] list
notebk expense [-m <YYYY-MM>] [-date DD/MM] -concept <text> [-income <n>] [-expense <n>] add
notebk expense [-m <YYYY-MM>] delete <id>

  Amounts accept a dot or a comma as decimal separator. The month defaults
  to the current one and the date label to today.
`
}

func (c *expenseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Month of the ledger (YYYY-MM). Defaults to the current month.")
	f.StringVar(&c.date, "date", "", "Date label of a new row (DD/MM). Defaults to today.")
	f.StringVar(&c.concept, "concept", "", "Concept of a new row.")
	f.StringVar(&c.income, "income", "", "Income of a new row.")
	f.StringVar(&c.expense, "expense", "", "Expense of a new row.")
}

func (c *expenseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withNotebook(ctx, c.env, func(nb *services.Notebook) error {
		month, err := monthFlag(nb, c.month)
		if err != nil {
			return err
		}
		list := nb.State().Expenses[month]

		switch action, args := splitAction(f.Args()); action {
		case "", "list":
			printExpenses(c.env, month, list)
			return nil

		case "add":
			date := c.date
			if date == "" {
				date = core.DateLabel(nb.Today())
			}
			income, err := amountFlag("income", c.income)
			if err != nil {
				return err
			}
			expense, err := amountFlag("expense", c.expense)
			if err != nil {
				return err
			}
			e := core.Expense{
				ID:      nb.NewID(),
				Date:    date,
				Concept: c.concept,
				Income:  income,
				Expense: expense,
			}
			if _, err := nb.Apply(ctx, core.ReplaceExpensesEdit{Month: month, Expenses: core.AddExpense(list, e)}); err != nil {
				return err
			}
			fmt.Fprintln(c.env.Out, e.ID)
			return nil

		case "delete":
			if len(args) != 1 {
				return usagef("delete needs exactly one id")
			}
			if !core.HasExpense(list, args[0]) {
				return fmt.Errorf("expense %q: %w", args[0], core.ErrItemNotFound)
			}
			_, err := nb.Apply(ctx, core.ReplaceExpensesEdit{Month: month, Expenses: core.DeleteExpense(list, args[0])})
			return err

		default:
			return usagef("unknown action %q", action)
		}
	})
}

// amountFlag reads an optional amount flag. Unset means zero.
func amountFlag(name, v string) (core.Amount, error) {
	if v == "" {
		return 0, nil
	}
	a, err := core.ParseAmountStrict(v)
	if err != nil {
		return 0, usagef("-%s: %v", name, err)
	}
	return a, nil
}

func printExpenses(env *Env, month string, list []core.Expense) {
	w := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tDATE\tCONCEPT\tINCOME\tEXPENSE\n")
	for _, e := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Concept,
			e.Income.Decimal().StringFixed(2), e.Expense.Decimal().StringFixed(2))
	}
	t := core.MonthTotals(list)
	fmt.Fprintf(w, "\t\t%s\t%s\t%s\n", month, t.Income.StringFixed(2), t.Expense.StringFixed(2))
	w.Flush()
}

type savingCmd struct {
	env   *Env
	year  string
	month string
}

func (*savingCmd) Name() string     { return "saving" }
func (*savingCmd) Synopsis() string { return "read or set the savings of a month" }
func (*savingCmd) Usage() string {
	return `notebk saving [-y <YYYY>] [-m <month>] [amount]

  Without an amount, prints the savings of the year and their total. With an
  amount, sets the savings of the month, given as a Spanish month name or
  a number from 1 to 12.
`
}

func (c *savingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.year, "y", "", "Year (YYYY). Defaults to the current year.")
	f.StringVar(&c.month, "m", "", "Month name or number. Defaults to the current month.")
}

func (c *savingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withNotebook(ctx, c.env, func(nb *services.Notebook) error {
		year, err := yearFlag(nb, c.year)
		if err != nil {
			return err
		}
		if f.NArg() == 0 {
			state := nb.State()
			w := tabwriter.NewWriter(c.env.Out, 0, 4, 2, ' ', 0)
			for _, name := range core.MonthNames {
				fmt.Fprintf(w, "%s\t%s\n", name, state.Savings[year][name].Decimal().StringFixed(2))
			}
			fmt.Fprintf(w, "Total\t%s\n", core.SavingsTotal(state.Savings, year).StringFixed(2))
			return w.Flush()
		}
		if f.NArg() != 1 {
			return usagef("expected a single amount")
		}

		month := core.MonthName(nb.Today().Month())
		if c.month != "" {
			if month, err = core.ParseMonthName(c.month); err != nil {
				return usagef("%v", err)
			}
		}
		amount, err := core.ParseAmountStrict(f.Arg(0))
		if err != nil {
			return usagef("%v", err)
		}
		_, err = nb.Apply(ctx, core.SetSavingEdit{Year: year, Month: month, Amount: amount})
		return err
	})
}

type summaryCmd struct {
	env  *Env
	year string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the annual summary of a year" }
func (*summaryCmd) Usage() string {
	return `notebk summary [-y <YYYY>]

  Prints income, expense and difference per month, the yearly totals, the
  savings total and the health checklist progress.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.year, "y", "", "Year (YYYY). Defaults to the current year.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withNotebook(ctx, c.env, func(nb *services.Notebook) error {
		year, err := yearFlag(nb, c.year)
		if err != nil {
			return err
		}
		state := nb.State()
		ys := nb.AnnualSummary(year)

		w := tabwriter.NewWriter(c.env.Out, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(w, "MONTH\tINCOME\tEXPENSE\tDIFF\t\n")
		for _, m := range ys.Months {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", m.Name,
				m.Totals.Income.StringFixed(2), m.Totals.Expense.StringFixed(2), m.Totals.Diff().StringFixed(2))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", year,
			ys.Total.Income.StringFixed(2), ys.Total.Expense.StringFixed(2), ys.Total.Diff().StringFixed(2))
		if err := w.Flush(); err != nil {
			return err
		}

		done, total := core.HealthProgress(state.Health[year])
		fmt.Fprintf(c.env.Out, "Savings: %s\n", core.SavingsTotal(state.Savings, year).StringFixed(2))
		fmt.Fprintf(c.env.Out, "Health: %d/%d\n", done, total)
		return nil
	})
}
