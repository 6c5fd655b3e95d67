// Package services holds the application object that owns the live document.
package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"notebk/internal/backup"
	"notebk/internal/cache"
	"notebk/internal/core"
	"notebk/internal/log"
	"notebk/internal/storage"
	"notebk/internal/transfer"
)

// Notebook owns the live document and writes it through to its store on
// every edit. Edits are serialized; reads see the last saved document.
type Notebook struct {
	mu     sync.Mutex
	state  core.AppState
	store  *storage.Store
	codec  *backup.Codec
	logger *log.Logger
	now    func() time.Time
	lastID int64

	// summaryGen changes whenever the expenses may have changed. It is part
	// of every summary cache key, so a summary computed from an older
	// document is never read back.
	summaryGen uint64
	summaries  cache.Cache[core.YearSummary]
}

// Option configures a Notebook.
type Option func(*Notebook)

// WithLogger sets the notebook logger.
func WithLogger(l *log.Logger) Option {
	return func(n *Notebook) { n.logger = l }
}

// WithClock overrides the time source for ids, backups and file names.
func WithClock(now func() time.Time) Option {
	return func(n *Notebook) { n.now = now }
}

// WithSummaryCache caches annual summaries per year.
func WithSummaryCache(c cache.Cache[core.YearSummary]) Option {
	return func(n *Notebook) { n.summaries = c }
}

// Open loads the document from store and returns the notebook owning it.
func Open(ctx context.Context, store *storage.Store, opts ...Option) *Notebook {
	n := &Notebook{
		store:  store,
		logger: log.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.WithComponent(log.ComponentNotebook)
	n.codec = backup.NewCodec(store, n.logger, backup.WithClock(n.now))
	n.state = store.Load(ctx)
	return n
}

// State returns the live document. Callers must not mutate it.
func (n *Notebook) State() core.AppState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Apply computes the edited document, saves it and only then makes it live.
// When the save fails the live document is unchanged.
func (n *Notebook) Apply(ctx context.Context, edit core.Edit) (core.AppState, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	next := edit.Apply(n.state)
	if err := n.store.Save(ctx, next); err != nil {
		n.logger.ErrorContext(ctx, "Edit not saved",
			log.NewFields().WithOperation(log.OpEdit).WithEdit(edit.Name()).WithError(err).ToSlice()...)
		return n.state, fmt.Errorf("%s: %w", edit.Name(), err)
	}
	n.state = next
	if core.TouchesExpenses(edit) {
		n.invalidateSummaries()
	}
	n.logger.DebugContext(ctx, "Edit applied", log.FieldEdit, edit.Name())
	return next, nil
}

// NewID returns a timestamp id that is strictly increasing within the process.
func (n *Notebook) NewID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.now().UnixNano()
	if id <= n.lastID {
		id = n.lastID + 1
	}
	n.lastID = id
	return strconv.FormatInt(id, 10)
}

// Today returns the current time, for callers that derive keys and labels.
func (n *Notebook) Today() time.Time {
	return n.now()
}

// AnnualSummary returns the twelve monthly totals of a year.
func (n *Notebook) AnnualSummary(year string) core.YearSummary {
	n.mu.Lock()
	expenses, gen := n.state.Expenses, n.summaryGen
	n.mu.Unlock()

	if n.summaries == nil {
		return core.AnnualSummary(expenses, year)
	}
	key := summaryKey(gen, year)
	if s, ok := n.summaries.Get(key); ok {
		return s
	}
	s := core.AnnualSummary(expenses, year)
	n.summaries.Set(key, s)
	return s
}

// invalidateSummaries must be called with n.mu held.
func (n *Notebook) invalidateSummaries() {
	n.summaryGen++
	if n.summaries != nil {
		n.summaries.Clear()
	}
}

func summaryKey(gen uint64, year string) string {
	return strconv.FormatUint(gen, 10) + "/" + year
}

// ExportBackup serializes a backup of the stored document.
func (n *Notebook) ExportBackup(ctx context.Context) (transfer.Payload, error) {
	n.mu.Lock()
	env := n.codec.CreateBackup(ctx)
	n.mu.Unlock()

	b, err := backup.Encode(env)
	if err != nil {
		return transfer.Payload{}, err
	}
	return transfer.Payload{
		Filename: n.codec.GenerateBackupFilename(),
		Title:    transfer.ShareTitle,
		Content:  b,
	}, nil
}

// Export serializes a backup and hands it to exp.
func (n *Notebook) Export(ctx context.Context, exp transfer.Exporter) transfer.Result {
	p, err := n.ExportBackup(ctx)
	if err != nil {
		n.logger.ErrorContext(ctx, "Backup not serialized", log.FieldOperation, log.OpExport, log.FieldError, err)
		return transfer.Result{Message: transfer.MsgExportFailed}
	}
	return exp.Export(ctx, p)
}

// ImportBackup validates a backup file without changing anything.
func (n *Notebook) ImportBackup(ctx context.Context, r io.Reader) backup.Result {
	return n.codec.ImportBackup(ctx, r)
}

// ApplyBackup replaces the whole document with data.
func (n *Notebook) ApplyBackup(ctx context.Context, data core.AppState) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	data = data.Normalize()
	if err := n.codec.ApplyBackup(ctx, data); err != nil {
		return err
	}
	n.state = data
	n.invalidateSummaries()
	return nil
}

// Restore picks a backup file, validates it and, unless dryRun, applies it.
func (n *Notebook) Restore(ctx context.Context, picker transfer.Picker, dryRun bool) backup.Result {
	rc, err := picker.Pick(ctx)
	if err != nil {
		n.logger.WarnContext(ctx, "No backup file", log.FieldOperation, log.OpImport, log.FieldError, err)
		return backup.Failure(backup.KindRead, backup.MsgReadFailed, nil)
	}
	defer rc.Close()

	res := n.ImportBackup(ctx, rc)
	if !res.Success || dryRun {
		return res
	}
	if err := n.ApplyBackup(ctx, *res.Data); err != nil {
		n.logger.ErrorContext(ctx, "Backup not applied", log.FieldOperation, log.OpApply, log.FieldError, err)
		return backup.Failure(backup.KindWrite, backup.MsgWriteFailed, nil)
	}
	return res
}
