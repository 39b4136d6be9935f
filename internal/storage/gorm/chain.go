package gormstorage

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vindinium-archive/recorder/internal/cache"
	"github.com/vindinium-archive/recorder/internal/model"
)

// historicalBotAttempts bounds the retries of a historical bot append that lost
// the race for a sequence number.
const historicalBotAttempts = 3

// link returns the chain fields of the row that follows head.
func link(head cache.Head, found bool) (uint, *uint) {
	if !found {
		return 1, nil
	}
	prev := head.ID
	return head.Seq + 1, &prev
}

// head returns the newest row of a turn or mine chain. Only the game's own worker
// appends to these chains, so after the first lookup the cached head is authoritative.
func (b *Backend) head(tx *gorm.DB, k cache.HeadKey) (cache.Head, bool, error) {
	if h, ok := b.deps.Heads.Get(k); ok {
		return h, true, nil
	}

	var q *gorm.DB
	switch k.Chain {
	case cache.ChainTurn:
		q = tx.Model(&model.Turn{}).Where("game_id = ?", k.GameID)
	case cache.ChainMine:
		q = tx.Model(&model.Mine{}).Where("game_id = ? AND mine_number = ?", k.GameID, k.Slot)
	default:
		return cache.Head{}, false, fmt.Errorf("unknown chain %q", k.Chain)
	}

	var rows []cache.Head
	if err := q.Select("id", "seq").Order("seq DESC").Limit(1).Scan(&rows).Error; err != nil {
		return cache.Head{}, false, fmt.Errorf("failed to find head of %s chain for %s: %w", k.Chain, k.GameID, err)
	}
	if len(rows) == 0 {
		return cache.Head{}, false, nil
	}
	return rows[0], true, nil
}

// appendHistoricalBot links row after the user's newest historical bot row.
// Several games may append to the same user concurrently; the unique (user_id, seq)
// index rejects the loser, which then re-reads the head and tries again.
func appendHistoricalBot(tx *gorm.DB, row model.HistoricalBot) error {
	var err error
	for attempt := 0; attempt < historicalBotAttempts; attempt++ {
		err = tx.Transaction(func(tx *gorm.DB) error {
			var prev []model.HistoricalBot
			err := tx.Select("id", "seq").
				Where("user_id = ?", row.UserID).
				Order("seq DESC").
				Limit(1).
				Find(&prev).Error
			if err != nil {
				return err
			}

			next := row
			if len(prev) > 0 {
				next.Seq, next.PreviousHistoricalBotID = link(cache.Head{ID: prev[0].ID, Seq: prev[0].Seq}, true)
			} else {
				next.Seq, next.PreviousHistoricalBotID = link(cache.Head{}, false)
			}
			return tx.Create(&next).Error
		})
		if err == nil || !isDuplicateKey(err) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to append historical bot %s: %w", row.UserID, err)
	}
	return nil
}

// isDuplicateKey reports whether err is a unique constraint violation.
// Driver errors are matched by message when GORM could not translate them.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
