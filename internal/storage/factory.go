// Package storage provides a factory for creating snapshot storage backends.
package storage

import (
	"fmt"
	"log"
)

// NewStorage creates a Store backend based on cfg, falling back to
// cfg.FallbackType (or plain in-memory, if unset) when the requested
// backend fails to initialize.
func NewStorage(cfg Config) (Store, error) {
	switch cfg.Type {
	case StorageTypeMemory, "":
		log.Println("storage: using in-memory snapshot store")
		return NewMemoryStore(), nil

	case StorageTypeSQLite:
		log.Printf("storage: using SQLite snapshot store at %s", cfg.SQLitePath)
		store, err := NewSQLiteStorage(cfg.SQLitePath, cfg.SQLiteTimeout)
		if err != nil {
			if cfg.FallbackType != "" && cfg.FallbackType != cfg.Type {
				log.Printf("storage: SQLite initialization failed: %v. Falling back to %s", err, cfg.FallbackType)
				return NewStorage(Config{Type: cfg.FallbackType})
			}
			return nil, fmt.Errorf("sqlite initialization failed: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewStorageFromEnv creates a Store from environment variables.
func NewStorageFromEnv() (Store, error) {
	return NewStorage(ConfigFromEnv())
}

// CloseStorage safely closes a Store.
func CloseStorage(s Store) error {
	if s == nil {
		return nil
	}
	return s.Close()
}
