package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"notebk/internal/core"
	"notebk/internal/services"
)

// Register adds every notebk subcommand to c.
func Register(c *subcommands.Commander, env *Env) {
	c.Register(&serveCmd{env: env}, "server")
	c.Register(&receiveCmd{env: env}, "server")

	c.Register(&exportCmd{env: env}, "backup")
	c.Register(&importCmd{env: env}, "backup")

	c.Register(&noteCmd{env: env}, "notebook")
	c.Register(&monthlyNoteCmd{env: env}, "notebook")
	c.Register(&expenseCmd{env: env}, "notebook")
	c.Register(&savingCmd{env: env}, "notebook")
	c.Register(&healthCmd{env: env}, "notebook")
	c.Register(&tableCmd{env: env}, "notebook")

	c.Register(&summaryCmd{env: env}, "views")
	c.Register(&showCmd{env: env}, "views")
}

// withNotebook opens the notebook and runs fn, mapping errors to exit codes.
func withNotebook(ctx context.Context, env *Env, fn func(*services.Notebook) error) subcommands.ExitStatus {
	nb, err := env.Notebook(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error opening notebook:", err)
		return subcommands.ExitFailure
	}
	if err := fn(nb); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(os.Stderr, "Error:", ue.msg)
			return subcommands.ExitUsageError
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// keyOrToday canonicalizes a key flag, defaulting to the key of today.
func keyOrToday(value string, canon func(string) (string, error), today func() string) (string, error) {
	if value == "" {
		return today(), nil
	}
	key, err := canon(value)
	if err != nil {
		return "", usagef("%v", err)
	}
	return key, nil
}

func dayFlag(nb *services.Notebook, v string) (string, error) {
	return keyOrToday(v, core.CanonicalDay, func() string { return core.DayKey(nb.Today()) })
}

func monthFlag(nb *services.Notebook, v string) (string, error) {
	return keyOrToday(v, core.CanonicalMonth, func() string { return core.MonthKey(nb.Today()) })
}

func yearFlag(nb *services.Notebook, v string) (string, error) {
	return keyOrToday(v, core.CanonicalYear, func() string { return core.YearKey(nb.Today()) })
}

// splitAction separates a leading action word from its arguments.
func splitAction(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}
	return args[0], args[1:]
}

type showCmd struct {
	env *Env
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "print the whole document as JSON" }
func (*showCmd) Usage() string {
	return `notebk show

  Prints the stored document, indented.
`
}

func (*showCmd) SetFlags(*flag.FlagSet) {}

func (c *showCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withNotebook(ctx, c.env, func(nb *services.Notebook) error {
		enc := json.NewEncoder(c.env.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(nb.State())
	})
}
