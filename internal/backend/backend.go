// Package backend selects and constructs the key-value store the
// repository persists through.
package backend

import (
	"fmt"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type Type string

const (
	Memory Type = "memory"
	File   Type = "file"
	SQLite Type = "sqlite"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case Memory, File, SQLite:
		return true
	default:
		return false
	}
}

// Open builds the KV store named by the config. The returned store's
// Close releases whatever the backend holds open.
func Open(cfg *config.Config, logger *log.Logger) (storage.KV, error) {
	logger = logger.WithComponent(log.ComponentBackend)

	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLite:
		kv, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return kv, nil
	case File:
		kv, err := storage.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize file store: %w", err)
		}
		logger.Info("Initialized file backend", "data_dir", cfg.DataDir)
		return kv, nil
	default:
		logger.Info("Initialized memory backend")
		return storage.NewMemoryStore(), nil
	}
}
