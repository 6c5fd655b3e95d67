package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"notebk/internal/core"
	"notebk/internal/services"
)

type healthCmd struct {
	env  *Env
	year string
}

func (*healthCmd) Name() string     { return "health" }
func (*healthCmd) Synopsis() string { return "manage the yearly health checklist" }
func (*healthCmd) Usage() string {
	return `notebk health [-y <YYYY>] list
notebk health [-y <YYYY>] add <title...>
notebk health [-y <YYYY>] toggle <id>
notebk health [-y <YYYY>] delete <id>
`
}

func (c *healthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.year, "y", "", "Year (YYYY). Defaults to the current year.")
}

func (c *healthCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withNotebook(ctx, c.env, func(nb *services.Notebook) error {
		year, err := yearFlag(nb, c.year)
		if err != nil {
			return err
		}
		items := nb.State().Health[year]

		var next []core.HealthItem
		switch action, args := splitAction(f.Args()); action {
		case "", "list":
			w := tabwriter.NewWriter(c.env.Out, 0, 4, 2, ' ', 0)
			for _, h := range items {
				mark := " "
				if h.Completed {
					mark = "x"
				}
				fmt.Fprintf(w, "[%s]\t%s\t%s\n", mark, h.ID, h.Title)
			}
			done, total := core.HealthProgress(items)
			fmt.Fprintf(w, "\t%d/%d\t\n", done, total)
			return w.Flush()

		case "add":
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return usagef("add needs a title")
			}
			item := core.HealthItem{ID: nb.NewID(), Title: title}
			if _, err := nb.Apply(ctx, core.ReplaceHealthEdit{Year: year, Items: core.AddHealthItem(items, item)}); err != nil {
				return err
			}
			fmt.Fprintln(c.env.Out, item.ID)
			return nil

		case "toggle", "delete":
			if len(args) != 1 {
				return usagef("%s needs exactly one id", action)
			}
			if !core.HasHealthItem(items, args[0]) {
				return fmt.Errorf("health item %q: %w", args[0], core.ErrItemNotFound)
			}
			if action == "toggle" {
				next = core.ToggleHealthItem(items, args[0])
			} else {
				next = core.DeleteHealthItem(items, args[0])
			}

		default:
			return usagef("unknown action %q", action)
		}
		_, err = nb.Apply(ctx, core.ReplaceHealthEdit{Year: year, Items: next})
		return err
	})
}

type tableCmd struct {
	env   *Env
	year  string
	col1  string
	col2  string
	color string
	icon  string
}

func (*tableCmd) Name() string     { return "table" }
func (*tableCmd) Synopsis() string { return "manage custom two-column tables of a year" }
func (*tableCmd) Usage() string {
	return `notebk table [-y <YYYY>] list
notebk table [-y <YYYY>] [-col1 <title>] [-col2 <title>] [-color <c>] [-icon <i>] add <title...>
notebk table [-y <YYYY>] show <table-id>
notebk table [-y <YYYY>] add-row <table-id> <val1> [val2]
notebk table [-y <YYYY>] delete-row <table-id> <row-id>
notebk table [-y <YYYY>] remove <table-id>
`
}

func (c *tableCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.year, "y", "", "Year (YYYY). Defaults to the current year.")
	f.StringVar(&c.col1, "col1", "", "Title of the first column of a new table.")
	f.StringVar(&c.col2, "col2", "", "Title of the second column of a new table.")
	f.StringVar(&c.color, "color", "", "Color of a new table.")
	f.StringVar(&c.icon, "icon", "", "Icon of a new table.")
}

func (c *tableCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withNotebook(ctx, c.env, func(nb *services.Notebook) error {
		year, err := yearFlag(nb, c.year)
		if err != nil {
			return err
		}
		state := nb.State()

		action, args := splitAction(f.Args())
		switch action {
		case "", "list":
			w := tabwriter.NewWriter(c.env.Out, 0, 4, 2, ' ', 0)
			for _, t := range state.CustomTables[year] {
				fmt.Fprintf(w, "%s\t%s\t%d rows\n", t.ID, t.Title, len(t.Rows))
			}
			return w.Flush()

		case "add":
			t, err := core.NewCustomTable(nb.NewID(), strings.Join(args, " "), c.col1, c.col2, c.color, c.icon)
			if err != nil {
				return usagef("add: %v", err)
			}
			if _, err := nb.Apply(ctx, core.AddCustomTableEdit{Year: year, Table: t}); err != nil {
				return err
			}
			fmt.Fprintln(c.env.Out, t.ID)
			return nil
		}

		switch action {
		case "show", "add-row", "delete-row", "remove":
		default:
			return usagef("unknown action %q", action)
		}
		if len(args) == 0 {
			return usagef("%s needs a table id", action)
		}
		table, ok := state.FindTable(year, args[0])
		if !ok {
			return fmt.Errorf("table %q in %s: %w", args[0], year, core.ErrTableNotFound)
		}
		args = args[1:]

		switch action {
		case "show":
			w := tabwriter.NewWriter(c.env.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID\t%s\t%s\n", table.Col1Title, table.Col2Title)
			for _, r := range table.Rows {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.Val1, r.Val2)
			}
			return w.Flush()

		case "add-row":
			if len(args) < 1 || len(args) > 2 {
				return usagef("add-row needs one or two values")
			}
			row := core.Row{ID: nb.NewID(), Val1: args[0]}
			if len(args) == 2 {
				row.Val2 = args[1]
			}
			if _, err := nb.Apply(ctx, core.ReplaceTableRowsEdit{Year: year, TableID: table.ID, Rows: core.AddRow(table.Rows, row)}); err != nil {
				return err
			}
			fmt.Fprintln(c.env.Out, row.ID)
			return nil

		case "delete-row":
			if len(args) != 1 {
				return usagef("delete-row needs exactly one row id")
			}
			if !core.HasRow(table.Rows, args[0]) {
				return fmt.Errorf("row %q: %w", args[0], core.ErrItemNotFound)
			}
			_, err := nb.Apply(ctx, core.ReplaceTableRowsEdit{Year: year, TableID: table.ID, Rows: core.DeleteRow(table.Rows, args[0])})
			return err

		case "remove":
			_, err := nb.Apply(ctx, core.RemoveCustomTableEdit{Year: year, TableID: table.ID})
			return err
		}
		return nil
	})
}
