package backend

import (
	"context"
	"fmt"

	"notebk/internal/log"
	"notebk/internal/storage"
)

// CleanupFunc releases a backend's resources.
type CleanupFunc func() error

// Result is an opened backend and its cleanup.
type Result struct {
	KV      storage.KV
	Cleanup CleanupFunc
}

// Close runs the cleanup, if any.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory opens backends from configuration.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Create opens the backend described by cfg.
func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case FileBackend:
		kv, err := storage.NewFileKV(cfg.DataDirectory)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file backend: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized file backend", "data_directory", cfg.DataDirectory)
		return &Result{KV: kv, Cleanup: kv.Close}, nil

	case SQLiteBackend:
		kv, err := storage.NewSQLiteKV(cfg.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{KV: kv, Cleanup: kv.Close}, nil

	case MemoryBackend:
		f.logger.WarnContext(ctx, "Initialized memory backend, data is lost on exit")
		kv := storage.NewMemoryKV()
		return &Result{KV: kv, Cleanup: kv.Close}, nil
	}
	return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
}
