// Package gormstorage implements the storage.Backend interface on top of GORM.
// It is shared by the postgres and sqlite backends, which only differ in how
// they open the connection.
package gormstorage

import (
	"context"
	"errors"
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vindinium-archive/recorder/internal/cache"
	"github.com/vindinium-archive/recorder/internal/database"
	"github.com/vindinium-archive/recorder/internal/model"
	"github.com/vindinium-archive/recorder/internal/model/convert"
	"github.com/vindinium-archive/recorder/pkg/core"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Heads  *cache.HeadCache
	Logger zerolog.Logger
	// Now stamps new game rows. Defaults to time.Now.
	Now func() time.Time
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps Dependencies
	log  zerolog.Logger
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Heads == nil {
		deps.Heads = cache.NewHeadCache()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Backend{
		deps: deps,
		log:  deps.Logger.With().Str("component", "storage").Logger(),
	}
}

// Init runs schema migration.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("gorm backend has no database")
	}

	b.log.Info().Str("dialect", b.deps.DB.Name()).Msg("Migrating schema")
	if err := database.Migrate(b.deps.DB); err != nil {
		return err
	}
	b.log.Info().Msg("Database setup complete")
	return nil
}

// Close drops the cached chain heads. The connection belongs to whoever opened it.
func (b *Backend) Close() error {
	b.deps.Heads.Reset()
	return nil
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// StartGame inserts the game row and records every bot of the first payload.
// Recording the same game twice leaves the existing game row untouched.
func (b *Backend) StartGame(ctx context.Context, s *core.GameState) error {
	game := convert.GameToModel(s, b.deps.Now())

	err := b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&game).Error; err != nil {
			return fmt.Errorf("failed to insert game: %w", err)
		}

		for _, h := range botHeroes(s) {
			if err := upsertBot(tx, h); err != nil {
				return err
			}
			if err := appendHistoricalBot(tx, convert.HistoricalBotToModel(h, s.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("start game %s: %w", s.ID, err)
	}

	b.log.Info().Str("game_id", s.ID).Int("board_size", game.BoardSize).Msg("Game inserted")
	return nil
}

// botHeroes returns the heroes that belong to a user, ordered by user id.
// Every transaction locks Bots rows in that order, so concurrent game starts
// sharing users cannot deadlock each other.
func botHeroes(s *core.GameState) []core.Hero {
	heroes := make([]core.Hero, 0, core.HeroCount)
	for _, h := range s.Heroes {
		if h.UserID != "" {
			heroes = append(heroes, h)
		}
	}
	slices.SortStableFunc(heroes, func(a, b core.Hero) int {
		return cmp.Compare(a.UserID, b.UserID)
	})
	return heroes
}

// upsertBot inserts the bot or, when it already exists, refreshes its elo.
// The name of the first sighting is kept.
func upsertBot(tx *gorm.DB, h core.Hero) error {
	bot := convert.BotToModel(h)
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"elo"}),
	}).Create(&bot).Error
	if err != nil {
		return fmt.Errorf("failed to upsert bot %s: %w", h.UserID, err)
	}
	return nil
}

// RecordTurn appends the turn, its four hero rows and one row per mine in a single
// transaction. The cached chain heads only advance once the transaction commits.
func (b *Backend) RecordTurn(ctx context.Context, rec core.TurnRecord) (uint, error) {
	s := rec.State
	advanced := make(map[cache.HeadKey]cache.Head, len(s.Mines)+1)
	var turn model.Turn

	err := b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.Finished {
			err := tx.Model(&model.Game{}).
				Where("game_id = ? AND finished = ?", s.ID, false).
				Update("finished", true).Error
			if err != nil {
				return fmt.Errorf("failed to mark game finished: %w", err)
			}
		}

		turnKey := cache.HeadKey{GameID: s.ID, Chain: cache.ChainTurn}
		head, found, err := b.head(tx, turnKey)
		if err != nil {
			return err
		}
		turn = convert.TurnToModel(s)
		turn.Seq, turn.PreviousTurnID = link(head, found)
		if err := tx.Create(&turn).Error; err != nil {
			return fmt.Errorf("failed to insert turn: %w", err)
		}
		advanced[turnKey] = cache.Head{ID: turn.ID, Seq: turn.Seq}

		heroes := make([]model.Hero, 0, core.HeroCount)
		for i, h := range s.Heroes {
			heroes = append(heroes, convert.HeroToModel(s, h, turn.ID, rec.Died[i]))
		}
		if err := tx.Create(&heroes).Error; err != nil {
			return fmt.Errorf("failed to insert heroes: %w", err)
		}
		var heroRowIDs [core.HeroCount]uint
		for i := range heroes {
			heroRowIDs[i] = heroes[i].ID
		}

		if len(s.Mines) == 0 {
			return nil
		}
		mines := make([]model.Mine, len(s.Mines))
		for i := range s.Mines {
			key := cache.HeadKey{GameID: s.ID, Chain: cache.ChainMine, Slot: i + 1}
			head, found, err := b.head(tx, key)
			if err != nil {
				return err
			}
			mines[i] = convert.MineToModel(s, i, turn.ID, heroRowIDs)
			mines[i].Seq, mines[i].PreviousMineID = link(head, found)
		}
		if err := tx.Create(&mines).Error; err != nil {
			return fmt.Errorf("failed to insert mines: %w", err)
		}
		for i := range mines {
			key := cache.HeadKey{GameID: s.ID, Chain: cache.ChainMine, Slot: mines[i].MineNumber}
			advanced[key] = cache.Head{ID: mines[i].ID, Seq: mines[i].Seq}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record turn %d of game %s: %w", s.Turn, s.ID, err)
	}

	b.deps.Heads.SetAll(advanced)
	b.log.Debug().Str("game_id", s.ID).Int("turn", s.Turn).Uint("seq", turn.Seq).Msg("Turn recorded")
	return turn.ID, nil
}

// EndGame forgets the cached chain heads of the game.
func (b *Backend) EndGame(gameID string) {
	b.deps.Heads.ForgetGame(gameID)
}
