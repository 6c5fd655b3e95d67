package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"notebk/internal/core"
	"notebk/internal/log"
)

// StorageKey is the fixed slot holding the live document.
const StorageKey = "notebk_data"

// Store reads and writes the AppState document in a KV slot.
type Store struct {
	kv     KV
	logger *log.Logger
}

func NewStore(kv KV, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{kv: kv, logger: logger.WithComponent(log.ComponentStorage)}
}

// Load returns the stored document, or the default document when the slot is
// empty, unreadable or holds something that is not a JSON object. A document
// with a value of the wrong type keeps every field that did decode. Failures
// are logged and never returned; the next Save overwrites whatever was there.
func (s *Store) Load(ctx context.Context) core.AppState {
	b, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error reading saved data, using defaults",
			log.FieldOperation, log.OpLoad, log.FieldKey, StorageKey, log.FieldError, err)
		return core.NewAppState()
	}
	if !ok || len(b) == 0 {
		return core.NewAppState()
	}

	var state core.AppState
	err = json.Unmarshal(b, &state)
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
	case errors.As(err, &typeErr) && typeErr.Field != "":
		s.logger.WarnContext(ctx, "Saved data has values of the wrong type, keeping the rest",
			log.FieldOperation, log.OpLoad, log.FieldKey, StorageKey,
			log.FieldBytes, len(b), log.FieldError, err)
	default:
		s.logger.ErrorContext(ctx, "Error parsing saved data, using defaults",
			log.FieldOperation, log.OpLoad, log.FieldKey, StorageKey,
			log.FieldBytes, len(b), log.FieldError, err)
		return core.NewAppState()
	}
	return state.Normalize()
}

// Save serializes the whole document and overwrites the slot. The encoder
// sorts map keys, so equal documents produce identical bytes.
func (s *Store) Save(ctx context.Context, state core.AppState) error {
	b, err := Encode(state)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, StorageKey, b); err != nil {
		s.logger.ErrorContext(ctx, "Error saving data",
			log.FieldOperation, log.OpSave, log.FieldKey, StorageKey, log.FieldError, err)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	s.logger.DebugContext(ctx, "Data saved", log.FieldKey, StorageKey, log.FieldBytes, len(b))
	return nil
}

// Encode is the storage encoding of a document.
func Encode(state core.AppState) ([]byte, error) {
	b, err := json.Marshal(state.Normalize())
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return b, nil
}
