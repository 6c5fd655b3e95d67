package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"notebk/internal/amqp"
	"notebk/internal/backup"
	"notebk/internal/log"
	"notebk/internal/services"
	"notebk/internal/transfer"
)

type exportCmd struct {
	env      *Env
	platform string
	dir      string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export a backup of the whole document" }
func (*exportCmd) Usage() string {
	return `notebk export [-platform auto|native|browser] [-dir <path>]

  On a native host the backup is shared (SHARE_COMMAND, then the AMQP
  broker) or copied to the clipboard. Elsewhere it is saved as
  notebk-backup-YYYY-MM-DD.json in the export directory.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.platform, "platform", "", "Override HOST_PLATFORM.")
	f.StringVar(&c.dir, "dir", "", "Override EXPORT_DIR.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withNotebook(ctx, c.env, func(nb *services.Notebook) error {
		exp, err := c.env.Exporter(ctx, c.platform, c.dir)
		if err != nil {
			return usagef("%v", err)
		}
		res := nb.Export(ctx, exp)
		if !res.Success {
			return fmt.Errorf("%s", res.Message)
		}
		switch {
		case res.Location != "":
			fmt.Fprintln(c.env.Out, res.Location)
		case res.Message != "":
			fmt.Fprintln(c.env.Out, res.Message)
		default:
			fmt.Fprintf(c.env.Out, "Backup sent via %s\n", res.Channel)
		}
		return nil
	})
}

type importCmd struct {
	env    *Env
	dryRun bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the whole document with a backup file" }
func (*importCmd) Usage() string {
	return `notebk import [-dry-run] <file|->

  Validates the backup and, unless -dry-run, replaces every section of the
  document with its contents. Use - to read from stdin.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "dry-run", false, "Only validate the file.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: import needs exactly one file")
		return subcommands.ExitUsageError
	}
	return withNotebook(ctx, c.env, func(nb *services.Notebook) error {
		res := nb.Restore(ctx, transfer.FilePicker{Path: f.Arg(0)}, c.dryRun)
		if !res.Success {
			for _, p := range res.Problems {
				fmt.Fprintln(os.Stderr, "  -", p)
			}
			return fmt.Errorf("%s", res.Error)
		}
		if c.dryRun {
			fmt.Fprintln(c.env.Out, "Backup is valid")
			return nil
		}
		fmt.Fprintln(c.env.Out, "Backup restored")
		return nil
	})
}

type receiveCmd struct {
	env *Env
	dir string
}

func (*receiveCmd) Name() string     { return "receive" }
func (*receiveCmd) Synopsis() string { return "save backups shared through the AMQP broker" }
func (*receiveCmd) Usage() string {
	return `notebk receive [-dir <path>]

  Consumes backups published to AMQP_QUEUE and saves each one in the
  export directory until interrupted. Invalid backups are rejected.
`
}

func (c *receiveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", "", "Override EXPORT_DIR.")
}

func (c *receiveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	broker, err := c.env.Broker(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if broker == nil {
		fmt.Fprintln(os.Stderr, "Error: AMQP_URL is not set")
		return subcommands.ExitUsageError
	}
	dir := c.dir
	if dir == "" {
		dir = c.env.Config.ExportDir
	}

	ctx, cancel := ShutdownContext(ctx, c.env.Logger)
	defer cancel()

	codec := backup.NewCodec(nil, c.env.Logger)
	err = broker.ConsumeBackups(ctx, receiveHandler(codec, transfer.DirDownloader{Dir: dir}, c.env))
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// receiveHandler validates a shared backup and saves it. Invalid backups are
// dropped rather than requeued, and so are backups with an unusable name.
func receiveHandler(codec *backup.Codec, d transfer.Downloader, env *Env) func(context.Context, *amqp.BackupMessage) error {
	return func(ctx context.Context, msg *amqp.BackupMessage) error {
		if res := codec.ImportBytes(ctx, msg.Content); !res.Success {
			env.Logger.WarnContext(ctx, "Discarding invalid backup",
				log.FieldFilename, msg.Filename, log.FieldProblems, res.Problems)
			return nil
		}
		loc, err := d.Download(ctx, msg.Payload())
		if errors.Is(err, transfer.ErrInvalidFilename) {
			return fmt.Errorf("%w: %w", amqp.ErrDiscard, err)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Out, loc)
		return nil
	}
}
