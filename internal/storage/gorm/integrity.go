package gormstorage

import (
	"context"
	"fmt"

	"github.com/vindinium-archive/recorder/internal/model"
)

// ChainAnomaly is a logical id whose chain has more than one head.
type ChainAnomaly struct {
	Chain     string
	LogicalID string
	Heads     int64
}

// headQueries count the rows nobody points to as previous, per logical id.
var headQueries = []struct {
	chain string
	sql   string
}{
	{"turns", `SELECT t.game_id AS logical_id, COUNT(*) AS heads
		FROM turns t LEFT JOIN turns later ON later.previous_turn_id = t.id
		WHERE later.id IS NULL
		GROUP BY t.game_id HAVING COUNT(*) > 1`},
	{"mines", `SELECT m.game_id || ':' || CAST(m.mine_number AS TEXT) AS logical_id, COUNT(*) AS heads
		FROM mines m LEFT JOIN mines later ON later.previous_mine_id = m.id
		WHERE later.id IS NULL
		GROUP BY m.game_id, m.mine_number HAVING COUNT(*) > 1`},
	{"historical_bots", `SELECT h.user_id AS logical_id, COUNT(*) AS heads
		FROM historical_bots h LEFT JOIN historical_bots later ON later.previous_historical_bot_id = h.id
		WHERE later.id IS NULL
		GROUP BY h.user_id HAVING COUNT(*) > 1`},
}

// MultiHeadChains walks the previous pointers of every chain table and returns the
// logical ids that have more than one head.
func (b *Backend) MultiHeadChains(ctx context.Context) ([]ChainAnomaly, error) {
	var out []ChainAnomaly
	for _, q := range headQueries {
		var rows []struct {
			LogicalID string
			Heads     int64
		}
		if err := b.deps.DB.WithContext(ctx).Raw(q.sql).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to check %s chains: %w", q.chain, err)
		}
		for _, r := range rows {
			out = append(out, ChainAnomaly{Chain: q.chain, LogicalID: r.LogicalID, Heads: r.Heads})
		}
	}
	return out, nil
}

// UnfinishedGames returns the ids of games that never reported completion,
// oldest first.
func (b *Backend) UnfinishedGames(ctx context.Context) ([]string, error) {
	var ids []string
	err := b.deps.DB.WithContext(ctx).
		Model(&model.Game{}).
		Where("finished = ?", false).
		Order("inserted_at").
		Pluck("game_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unfinished games: %w", err)
	}
	return ids, nil
}
