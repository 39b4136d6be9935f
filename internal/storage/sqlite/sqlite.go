// Package sqlitestorage implements the storage.Backend interface on SQLite.
// With no path configured the database lives in memory and is periodically
// dumped to disk via VACUUM INTO.
package sqlitestorage

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vindinium-archive/recorder/internal/config"
	"github.com/vindinium-archive/recorder/internal/database"
	gormstorage "github.com/vindinium-archive/recorder/internal/storage/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      config.SQLiteConfig
	log      zerolog.Logger
	stopChan chan struct{}
	done     chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
	closeErr  error
}

// New opens the SQLite database and wraps it in a GORM backend.
func New(cfg config.SQLiteConfig, logger zerolog.Logger) (*Backend, error) {
	db, err := database.OpenSqlite(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite DB: %w", err)
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:     db,
			Logger: logger,
		}),
		db:       db,
		cfg:      cfg,
		log:      logger.With().Str("component", "sqlite").Logger(),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// inMemory reports whether the database needs dumping to survive the process.
func (b *Backend) inMemory() bool {
	return b.cfg.Path == ""
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	b.startOnce.Do(func() {
		if b.inMemory() && b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
			go b.dumpLoop()
		} else {
			close(b.done)
		}
	})

	return nil
}

// Close stops the dump goroutine, writes a final dump and closes the database.
// Only the first call does any work.
func (b *Backend) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = b.close()
	})
	return b.closeErr
}

func (b *Backend) close() error {
	// never initialized: nothing runs the dump loop
	b.startOnce.Do(func() { close(b.done) })
	close(b.stopChan)
	<-b.done

	if b.inMemory() && b.cfg.DumpPath != "" {
		if err := b.Dump(); err != nil {
			b.log.Error().Err(err).Msg("Final dump failed")
		}
	}

	b.Backend.Close()
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Dump writes a point-in-time snapshot of the database to the dump path.
func (b *Backend) Dump() error {
	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
		return err
	}
	b.log.Debug().Dur("duration", time.Since(start)).Str("path", b.cfg.DumpPath).Msg("Dumped to disk")
	return nil
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Dump(); err != nil {
				b.log.Error().Err(err).Msg("Error dumping to disk")
			}
		}
	}
}
