// Package backup wraps the document in a versioned envelope and validates
// untrusted input before it can replace the live document.
package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"notebk/internal/core"
)

const (
	// Version of the envelope format written by this application.
	Version = 1
	// AppName tags envelopes produced by this application.
	AppName = "notebk"

	// TimestampLayout matches an ISO-8601 UTC instant with milliseconds.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Envelope is the backup file format. The live document carries no version;
// only exported backups do.
type Envelope struct {
	Version   int           `json:"version"`
	Timestamp string        `json:"timestamp"`
	AppName   string        `json:"appName"`
	Data      core.AppState `json:"data"`
}

// NewEnvelope wraps state as a backup taken at t.
func NewEnvelope(state core.AppState, t time.Time) Envelope {
	return Envelope{
		Version:   Version,
		Timestamp: t.UTC().Format(TimestampLayout),
		AppName:   AppName,
		Data:      state.Normalize(),
	}
}

// Filename is the conventional backup file name for a backup taken at t.
// Same-day exports share a name.
func Filename(t time.Time) string {
	return fmt.Sprintf("%s-backup-%s.json", AppName, t.UTC().Format(core.DayLayout))
}

// Encode serializes an envelope with two-space indentation.
func Encode(env Envelope) ([]byte, error) {
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}
	return b, nil
}

// ValidateBackup is the shallow envelope check: candidate is an object whose
// appName is the application tag, whose version is a number and whose data is
// a non-null object. It does not look inside data; see ValidateData.
func ValidateBackup(candidate any) bool {
	switch v := candidate.(type) {
	case Envelope:
		return v.AppName == AppName
	case *Envelope:
		return v != nil && v.AppName == AppName
	case map[string]any:
		if v == nil {
			return false
		}
		if name, ok := v["appName"].(string); !ok || name != AppName {
			return false
		}
		switch v["version"].(type) {
		case float64, json.Number, int:
		default:
			return false
		}
		switch d := v["data"].(type) {
		case map[string]any:
			return d != nil
		case []any:
			return d != nil
		}
		return false
	default:
		return false
	}
}
