// Package postgres implements the storage.Backend interface on a PostgreSQL
// connection, delegating all writes to the GORM backend.
package postgres

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vindinium-archive/recorder/internal/cache"
	"github.com/vindinium-archive/recorder/internal/config"
	"github.com/vindinium-archive/recorder/internal/database"
	gormstorage "github.com/vindinium-archive/recorder/internal/storage/gorm"
)

// Opener opens the connection. Tests replace it to avoid a live server.
type Opener func(cfg config.PostgresConfig) (*gorm.DB, error)

// Backend owns a postgres connection and the GORM backend writing through it.
type Backend struct {
	*gormstorage.Backend
	cfg    config.PostgresConfig
	open   Opener
	heads  *cache.HeadCache
	logger zerolog.Logger
	db     *gorm.DB
}

// New creates a postgres backend. The connection is opened by Init.
func New(cfg config.PostgresConfig, logger zerolog.Logger) *Backend {
	return NewWithOpener(cfg, logger, database.OpenPostgres)
}

// NewWithOpener is New with a custom connection opener.
func NewWithOpener(cfg config.PostgresConfig, logger zerolog.Logger, open Opener) *Backend {
	return &Backend{
		cfg:    cfg,
		open:   open,
		heads:  cache.NewHeadCache(),
		logger: logger,
	}
}

// Init connects, then migrates through the embedded GORM backend.
func (b *Backend) Init() error {
	b.logger.Debug().
		Str("host", b.cfg.Host).
		Str("port", b.cfg.Port).
		Str("database", b.cfg.Database).
		Str("user", b.cfg.Username).
		Msg("Connecting to Postgres DB")

	db, err := b.open(b.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	b.db = db

	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:     db,
		Heads:  b.heads,
		Logger: b.logger,
	})
	if err := b.Backend.Init(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.logger.Info().Str("database", b.cfg.Database).Msg("Connected to database")
	return nil
}

// Close releases the connection pool.
func (b *Backend) Close() error {
	if b.Backend != nil {
		b.Backend.Close()
	}
	if b.db == nil {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
