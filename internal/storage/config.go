// Package storage persists and restores kernel snapshots: interned terms,
// concepts (belief/task bags, links, activation) and the cycle counter.
package storage

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// StorageType represents the type of storage backend.
type StorageType string

const (
	// StorageTypeMemory keeps snapshots in process memory only (default).
	StorageTypeMemory StorageType = "memory"
	// StorageTypeSQLite persists snapshots to a SQLite database file.
	StorageTypeSQLite StorageType = "sqlite"
)

// Config holds storage configuration.
type Config struct {
	Type          StorageType // Storage backend type
	SQLitePath    string      // Path to SQLite database file
	SQLiteTimeout int         // SQLite busy timeout in milliseconds
	FallbackType  StorageType // Backend to fall back to if Type fails to initialize
}

// DefaultConfig returns default configuration with in-memory storage.
func DefaultConfig() Config {
	return Config{
		Type:          StorageTypeMemory,
		SQLitePath:    "./data/nars-kernel.db",
		SQLiteTimeout: 5000,
	}
}

// ConfigFromEnv reads storage configuration from environment variables.
// Supports:
//   - NARS_STORAGE_TYPE: "memory" (default) or "sqlite"
//   - NARS_STORAGE_SQLITE_PATH: Path to SQLite database file
//   - NARS_STORAGE_SQLITE_TIMEOUT: Busy timeout in milliseconds
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if storageType := os.Getenv("NARS_STORAGE_TYPE"); storageType != "" {
		cfg.Type = StorageType(storageType)
	}

	if sqlitePath := os.Getenv("NARS_STORAGE_SQLITE_PATH"); sqlitePath != "" {
		cfg.SQLitePath = sqlitePath
	}

	if cfg.Type == StorageTypeSQLite {
		dir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			log.Printf("warning: failed to create SQLite directory %s: %v (factory will handle this)", dir, err)
		}
	}

	if timeout := os.Getenv("NARS_STORAGE_SQLITE_TIMEOUT"); timeout != "" {
		if val, err := strconv.Atoi(timeout); err == nil && val > 0 {
			cfg.SQLiteTimeout = val
		}
	}

	return cfg
}
