package gormstorage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vindinium-archive/recorder/internal/model"
)

func TestMultiHeadChains_DetectsFork(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	// two rows of the same game that nobody links to
	require.NoError(t, b.DB().Create(&model.Turn{GameID: "g1", Seq: 1}).Error)
	require.NoError(t, b.DB().Create(&model.Turn{GameID: "g1", Seq: 2}).Error)
	require.NoError(t, b.DB().Create(&model.Mine{GameID: "g1", MineNumber: 3, Seq: 1, TurnID: 1}).Error)
	require.NoError(t, b.DB().Create(&model.Mine{GameID: "g1", MineNumber: 3, Seq: 2, TurnID: 2}).Error)

	anomalies, err := b.MultiHeadChains(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []ChainAnomaly{
		{Chain: "turns", LogicalID: "g1", Heads: 2},
		{Chain: "mines", LogicalID: "g1:3", Heads: 2},
	}, anomalies)
}

func TestUnfinishedGames(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.DB().Create(&model.Game{GameID: "late", InsertedAt: testTime.Add(time.Hour)}).Error)
	require.NoError(t, b.DB().Create(&model.Game{GameID: "early", InsertedAt: testTime}).Error)
	require.NoError(t, b.DB().Create(&model.Game{GameID: "done", InsertedAt: testTime, Finished: true}).Error)

	ids, err := b.UnfinishedGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "late"}, ids)
}
