package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"notebk/internal/cache"
	apphttp "notebk/internal/http"
	"notebk/internal/log"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = time.Minute
)

type serveCmd struct {
	env  *Env
	port string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the notebook as a local JSON API" }
func (*serveCmd) Usage() string {
	return `notebk serve [-port <n>]

  Serves the document over HTTP until interrupted. Exports requested through
  POST /api/export use the configured host platform.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.port, "port", "", "Override PORT.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	env := c.env
	logger := env.Logger

	nb, err := env.Notebook(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error opening notebook:", err)
		return subcommands.ExitFailure
	}
	exp, err := env.Exporter(ctx, "", "")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	port := c.port
	if port == "" {
		port = env.Config.Port
	}
	srv := apphttp.NewServer(":"+port, nb, exp, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	caches := cache.NewManager(logger)
	if env.summaries != nil {
		caches.Register(env.summaries)
	}
	caches.StartCleanup(cacheCleanupInterval)
	defer caches.Stop()

	ctx, cancel := ShutdownContext(ctx, logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting notebk server", "port", port, log.FieldBackend, env.Config.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		return subcommands.ExitFailure
	}
	logger.Info("Server stopped gracefully")
	return subcommands.ExitSuccess
}
