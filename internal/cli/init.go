// Package cli provides the notebk subcommands and the initialization they
// share: environment, configuration, logging, storage and exporters.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"

	"notebk/internal/amqp"
	"notebk/internal/backend"
	"notebk/internal/cache"
	"notebk/internal/config"
	"notebk/internal/core"
	"notebk/internal/log"
	"notebk/internal/services"
	"notebk/internal/storage"
	"notebk/internal/transfer"
)

// SetupLogger initializes structured logging at the given LOG_LEVEL and sets
// it as the default logger. Logs go to stderr so command output stays clean.
func SetupLogger(level string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
		Output:    w,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Env is what every subcommand runs against. The notebook and the exporter
// are opened on first use and released by Close.
type Env struct {
	Config *config.Config
	Logger *log.Logger
	Out    io.Writer

	nb        *services.Notebook
	summaries *cache.LRUCache[core.YearSummary]
	exporter  transfer.Exporter
	broker    *amqp.Client
	closers   []func() error
}

// NewEnv builds an Env writing command output to out.
func NewEnv(cfg *config.Config, logger *log.Logger, out io.Writer) *Env {
	if logger == nil {
		logger = log.Discard()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Env{Config: cfg, Logger: logger, Out: out}
}

// Notebook opens the configured backend and loads the document.
func (e *Env) Notebook(ctx context.Context) (*services.Notebook, error) {
	if e.nb != nil {
		return e.nb, nil
	}
	bcfg, err := backend.FromAppConfig(e.Config)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(e.Logger).Create(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, res.Close)

	e.summaries = cache.NewLRUCache[core.YearSummary](e.Config.SummaryCacheSize, e.Config.SummaryCacheTTL)
	store := storage.NewStore(res.KV, e.Logger)
	e.nb = services.Open(ctx, store,
		services.WithLogger(e.Logger),
		services.WithSummaryCache(e.summaries))
	return e.nb, nil
}

// Broker connects to the AMQP broker, if one is configured. A nil client and
// nil error mean no broker.
func (e *Env) Broker(ctx context.Context) (*amqp.Client, error) {
	if e.broker != nil || e.Config.AMQPURL == "" {
		return e.broker, nil
	}
	client, err := amqp.NewClient(e.Config.AMQPURL, e.Config.AMQPExchange, e.Config.AMQPQueue, e.Logger)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	e.broker = client
	e.closers = append(e.closers, client.Close)
	return client, nil
}

// Exporter builds the platform adapter. platform overrides HOST_PLATFORM
// when non-empty; exportDir overrides EXPORT_DIR.
func (e *Env) Exporter(ctx context.Context, platform, exportDir string) (transfer.Exporter, error) {
	if e.exporter != nil && platform == "" && exportDir == "" {
		return e.exporter, nil
	}
	if platform == "" {
		platform = e.Config.HostPlatform
	}
	p, err := transfer.ParsePlatform(platform)
	if err != nil {
		return nil, err
	}
	if exportDir == "" {
		exportDir = e.Config.ExportDir
	}

	var sharers transfer.Sharers
	if cmd := transfer.ParseCommand(e.Config.ShareCommand); cmd != nil {
		sharers = append(sharers, cmd)
	}
	broker, err := e.Broker(ctx)
	if err != nil {
		// Sharing falls back to the clipboard.
		e.Logger.WarnContext(ctx, "Broker unavailable for sharing", log.FieldError, err)
	} else if broker != nil {
		sharers = append(sharers, broker)
	}

	exp := transfer.NewAdapter(
		transfer.NewDetector(p, nil),
		transfer.Native{Sharer: sharers, Clipboard: transfer.SystemClipboard{}},
		transfer.Browser{Downloader: transfer.DirDownloader{Dir: exportDir}},
		e.Logger,
	)
	if e.exporter == nil {
		e.exporter = exp
	}
	return exp, nil
}

// Close releases everything opened through the Env.
func (e *Env) Close() error {
	var result *multierror.Error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	e.closers = nil
	return result.ErrorOrNil()
}
