package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vindinium-archive/recorder/internal/config"
	gormstorage "github.com/vindinium-archive/recorder/internal/storage/gorm"
	"github.com/vindinium-archive/recorder/internal/storage/postgres"
	sqlitestorage "github.com/vindinium-archive/recorder/internal/storage/sqlite"
)

// Compile-time interface checks
var (
	_ Backend = (*gormstorage.Backend)(nil)
	_ Backend = (*postgres.Backend)(nil)
	_ Backend = (*sqlitestorage.Backend)(nil)
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, logger zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(cfg.Postgres, logger), nil
	case "sqlite":
		b, err := sqlitestorage.New(cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
