// Package backend picks and opens the storage slot that holds the document.
package backend

import (
	"fmt"

	"notebk/internal/config"
)

// Type names a storage backend.
type Type string

const (
	FileBackend   Type = "file"
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

func (t Type) String() string { return string(t) }

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case FileBackend, MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Types returns every valid backend type.
func Types() []Type {
	return []Type{FileBackend, MemoryBackend, SQLiteBackend}
}

// Config holds what is needed to open a backend.
type Config struct {
	Type Type

	// File backend
	DataDirectory string

	// SQLite backend
	SQLiteDBPath string
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	t := Type(appConfig.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return Config{
		Type:          t,
		DataDirectory: appConfig.DataDir,
		SQLiteDBPath:  appConfig.SQLiteDBPath,
	}, nil
}

// Validate checks the fields the selected backend needs.
func (c Config) Validate() error {
	switch c.Type {
	case FileBackend:
		if c.DataDirectory == "" {
			return fmt.Errorf("data directory is required for file backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case MemoryBackend:
	default:
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	return nil
}
