package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"notebk/internal/core"
	"notebk/internal/log"
	"notebk/internal/storage"
)

// Kind labels the cause of a failed import.
type Kind string

const (
	KindRead    Kind = "read"
	KindParse   Kind = "parse"
	KindInvalid Kind = "invalid"
	KindWrite   Kind = "write"
)

// User-facing failure messages.
const (
	MsgReadFailed  = "Error al leer el archivo"
	MsgParseFailed = "Error al leer el archivo JSON"
	MsgInvalid     = "Archivo de backup inválido o corrupto"
	MsgWriteFailed = "Error al guardar los datos"
)

// Result describes the outcome of an import. On failure Data is nil and the
// live document is untouched.
type Result struct {
	Success  bool           `json:"success"`
	Data     *core.AppState `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Kind     Kind           `json:"kind,omitempty"`
	Problems []string       `json:"problems,omitempty"`
}

// Failure builds a failed result.
func Failure(kind Kind, msg string, problems []string) Result {
	return Result{Error: msg, Kind: kind, Problems: problems}
}

// Codec creates backups from a store and applies validated ones back to it.
type Codec struct {
	store  *storage.Store
	logger *log.Logger
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for timestamps and file names.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(store *storage.Store, logger *log.Logger, opts ...Option) *Codec {
	if logger == nil {
		logger = log.Discard()
	}
	c := &Codec{
		store:  store,
		logger: logger.WithComponent(log.ComponentBackup),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateBackup wraps the currently stored document.
func (c *Codec) CreateBackup(ctx context.Context) Envelope {
	return NewEnvelope(c.store.Load(ctx), c.now())
}

// GenerateBackupFilename names a backup taken now.
func (c *Codec) GenerateBackupFilename() string {
	return Filename(c.now())
}

// ImportBackup reads, parses and validates a backup file. It never touches the
// store: a successful result carries the document for ApplyBackup.
func (c *Codec) ImportBackup(ctx context.Context, r io.Reader) Result {
	b, err := io.ReadAll(r)
	if err != nil {
		c.logger.WarnContext(ctx, "Backup read failed", log.FieldOperation, log.OpImport, log.FieldError, err)
		return Failure(KindRead, MsgReadFailed, nil)
	}
	return c.decode(ctx, b)
}

// ImportBytes is ImportBackup over an in-memory file.
func (c *Codec) ImportBytes(ctx context.Context, b []byte) Result {
	return c.decode(ctx, b)
}

func (c *Codec) decode(ctx context.Context, b []byte) Result {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		c.logger.WarnContext(ctx, "Backup is not JSON",
			log.FieldOperation, log.OpImport, log.FieldBytes, len(b), log.FieldError, err)
		return Failure(KindParse, MsgParseFailed, nil)
	}

	if !ValidateBackup(raw) {
		c.logger.WarnContext(ctx, "Backup envelope rejected", log.FieldOperation, log.OpValidate)
		return Failure(KindInvalid, MsgInvalid, []string{"not a " + AppName + " backup envelope"})
	}
	env := raw.(map[string]any)
	if err := ValidateData(env["data"]); err != nil {
		problems := Problems(err)
		c.logger.WarnContext(ctx, "Backup data rejected",
			log.FieldOperation, log.OpValidate, log.FieldProblems, len(problems), log.FieldError, err)
		return Failure(KindInvalid, MsgInvalid, problems)
	}

	var decoded Envelope
	if err := json.Unmarshal(b, &decoded); err != nil {
		c.logger.WarnContext(ctx, "Backup decode failed", log.FieldOperation, log.OpImport, log.FieldError, err)
		return Failure(KindInvalid, MsgInvalid, []string{err.Error()})
	}
	if decoded.Version != Version {
		c.logger.WarnContext(ctx, "Backup written by another format version",
			"version", decoded.Version, "timestamp", decoded.Timestamp)
	}

	data := decoded.Data.Normalize()
	c.logger.InfoContext(ctx, "Backup accepted",
		log.FieldOperation, log.OpImport, log.FieldBytes, len(b), "timestamp", decoded.Timestamp)
	return Result{Success: true, Data: &data}
}

// ApplyBackup replaces the stored document with data. There is no merge.
func (c *Codec) ApplyBackup(ctx context.Context, data core.AppState) error {
	if err := c.store.Save(ctx, data); err != nil {
		return fmt.Errorf("apply backup: %w", err)
	}
	c.logger.InfoContext(ctx, "Backup applied", log.FieldOperation, log.OpApply)
	return nil
}
