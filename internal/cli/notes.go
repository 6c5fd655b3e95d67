package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"notebk/internal/core"
	"notebk/internal/services"
)

type noteCmd struct {
	env   *Env
	day   string
	clear bool
}

func (*noteCmd) Name() string     { return "note" }
func (*noteCmd) Synopsis() string { return "read or write the note of a day" }
func (*noteCmd) Usage() string {
	return `notebk note [-d <YYYY-MM-DD>] [-clear] [text...]

  Without text, prints the note of the day. With text, replaces it.
  The day defaults to today.
`
}

func (c *noteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.day, "d", "", "Day of the note (YYYY-MM-DD). Defaults to today.")
	f.BoolVar(&c.clear, "clear", false, "Empty the note.")
}

func (c *noteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withNotebook(ctx, c.env, func(nb *services.Notebook) error {
		day, err := dayFlag(nb, c.day)
		if err != nil {
			return err
		}
		text, write := noteText(f.Args(), c.clear)
		if !write {
			fmt.Fprintln(c.env.Out, nb.State().Notes[day])
			return nil
		}
		_, err = nb.Apply(ctx, core.SetNoteEdit{Day: day, Text: text})
		return err
	})
}

type monthlyNoteCmd struct {
	env   *Env
	month string
	clear bool
}

func (*monthlyNoteCmd) Name() string     { return "monthly-note" }
func (*monthlyNoteCmd) Synopsis() string { return "read or write the note of a month" }
func (*monthlyNoteCmd) Usage() string {
	return `notebk monthly-note [-m <YYYY-MM>] [-clear] [text...]

  Without text, prints the note of the month. With text, replaces it.
  The month defaults to the current one.
`
}

func (c *monthlyNoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Month of the note (YYYY-MM). Defaults to the current month.")
	f.BoolVar(&c.clear, "clear", false, "Empty the note.")
}

func (c *monthlyNoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withNotebook(ctx, c.env, func(nb *services.Notebook) error {
		month, err := monthFlag(nb, c.month)
		if err != nil {
			return err
		}
		text, write := noteText(f.Args(), c.clear)
		if !write {
			fmt.Fprintln(c.env.Out, nb.State().MonthlyNotes[month])
			return nil
		}
		_, err = nb.Apply(ctx, core.SetMonthlyNoteEdit{Month: month, Text: text})
		return err
	})
}

func noteText(args []string, clear bool) (string, bool) {
	if clear {
		return "", true
	}
	if len(args) == 0 {
		return "", false
	}
	return strings.Join(args, " "), true
}
