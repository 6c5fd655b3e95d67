package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"

	"notebk/internal/cli"
	"notebk/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	logger := cli.SetupLogger(cfg.LogLevel, os.Stderr)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	env := cli.NewEnv(cfg, logger, os.Stdout)
	cli.Register(commander, env)

	flag.Parse()
	status := commander.Execute(context.Background())
	if err := env.Close(); err != nil {
		logger.Error("Cleanup failed", log.FieldError, err)
	}
	os.Exit(int(status))
}
