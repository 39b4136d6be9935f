package gormstorage

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vindinium-archive/recorder/internal/cache"
	"github.com/vindinium-archive/recorder/internal/model"
	"github.com/vindinium-archive/recorder/pkg/core"
)

func TestInit_RequiresDB(t *testing.T) {
	b := New(Dependencies{Logger: zerolog.Nop()})
	require.Error(t, b.Init())
}

func TestStartGame_InsertsGameAndBots(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.StartGame(ctx, testState(t, "g1", stateOpts{elo: 1200})))

	var game model.Game
	require.NoError(t, b.DB().First(&game, "game_id = ?", "g1").Error)
	assert.Equal(t, 4, game.BoardSize)
	assert.Equal(t, 2, game.MineCount)
	assert.False(t, game.Finished)
	assert.True(t, game.InsertedAt.Equal(testTime))

	// heroes 3 and 4 have no user id
	var bots []model.Bot
	require.NoError(t, b.DB().Order("user_id").Find(&bots).Error)
	require.Len(t, bots, 2)
	assert.Equal(t, "alpha", bots[0].Name)
	assert.Equal(t, 1200, bots[0].Elo)

	var hist []model.HistoricalBot
	require.NoError(t, b.DB().Order("user_id").Find(&hist).Error)
	require.Len(t, hist, 2)
	assert.Equal(t, uint(1), hist[0].Seq)
	assert.Nil(t, hist[0].PreviousHistoricalBotID)
	assert.Equal(t, "g1", hist[0].LastGameID)
}

func TestStartGame_IsIdempotentForGameRow(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	s := testState(t, "g1", stateOpts{})

	require.NoError(t, b.StartGame(ctx, s))
	require.NoError(t, b.StartGame(ctx, s))

	var count int64
	require.NoError(t, b.DB().Model(&model.Game{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStartGame_UpsertsBotAndExtendsHistory(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.StartGame(ctx, testState(t, "g1", stateOpts{elo: 1200})))

	second := testState(t, "g2", stateOpts{elo: 1250})
	second.Heroes[0].Name = "renamed"
	require.NoError(t, b.StartGame(ctx, second))

	var bot model.Bot
	require.NoError(t, b.DB().First(&bot, "user_id = ?", "u1").Error)
	assert.Equal(t, 1250, bot.Elo)
	assert.Equal(t, "alpha", bot.Name)

	var hist []model.HistoricalBot
	require.NoError(t, b.DB().Where("user_id = ?", "u1").Order("seq").Find(&hist).Error)
	require.Len(t, hist, 2)
	assert.Equal(t, uint(2), hist[1].Seq)
	require.NotNil(t, hist[1].PreviousHistoricalBotID)
	assert.Equal(t, hist[0].ID, *hist[1].PreviousHistoricalBotID)
	assert.Equal(t, "g2", hist[1].LastGameID)
	assert.Equal(t, 1250, hist[1].Elo)
}

func TestStartGame_SameUserTwiceInOneGame(t *testing.T) {
	b := newTestBackend(t)
	s := testState(t, "g1", stateOpts{})
	s.Heroes[1].UserID = "u1"

	require.NoError(t, b.StartGame(context.Background(), s))

	var hist []model.HistoricalBot
	require.NoError(t, b.DB().Where("user_id = ?", "u1").Order("seq").Find(&hist).Error)
	require.Len(t, hist, 2)
	assert.Equal(t, hist[0].ID, *hist[1].PreviousHistoricalBotID)
}

func TestBotHeroes_OrderedByUserID(t *testing.T) {
	s := testState(t, "g1", stateOpts{})
	s.Heroes[0].UserID = "u2"
	s.Heroes[1].UserID = "u1"
	s.Heroes[3].UserID = "u0"

	var got []string
	for _, h := range botHeroes(s) {
		got = append(got, h.UserID)
	}
	assert.Equal(t, []string{"u0", "u1", "u2"}, got)
}

func TestStartGame_WritesBotsInUserOrder(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	// both games share u1 and u2, in opposite hero slots
	require.NoError(t, b.StartGame(ctx, testState(t, "g1", stateOpts{})))
	swapped := testState(t, "g2", stateOpts{})
	swapped.Heroes[0].UserID, swapped.Heroes[1].UserID = "u2", "u1"
	require.NoError(t, b.StartGame(ctx, swapped))

	var hist []model.HistoricalBot
	require.NoError(t, b.DB().Where("last_game_id = ?", "g2").Order("id").Find(&hist).Error)
	require.Len(t, hist, 2)
	assert.Equal(t, "u1", hist[0].UserID)
	assert.Equal(t, "u2", hist[1].UserID)
	assert.Equal(t, uint(2), hist[0].Seq)
	assert.Equal(t, uint(2), hist[1].Seq)
}

func TestRecordTurn_TwoRowChain(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	require.NoError(t, b.StartGame(ctx, testState(t, "g1", stateOpts{})))

	first, err := b.RecordTurn(ctx, core.TurnRecord{State: testState(t, "g1", stateOpts{turn: 0})})
	require.NoError(t, err)
	second, err := b.RecordTurn(ctx, core.TurnRecord{State: testState(t, "g1", stateOpts{turn: 1})})
	require.NoError(t, err)

	var turns []model.Turn
	require.NoError(t, b.DB().Where("game_id = ?", "g1").Order("seq").Find(&turns).Error)
	require.Len(t, turns, 2)
	assert.Equal(t, first, turns[0].ID)
	assert.Equal(t, second, turns[1].ID)
	assert.Nil(t, turns[0].PreviousTurnID)
	require.NotNil(t, turns[1].PreviousTurnID)
	assert.Equal(t, first, *turns[1].PreviousTurnID)

	var mines []model.Mine
	require.NoError(t, b.DB().Where("game_id = ? AND mine_number = ?", "g1", 1).Order("seq").Find(&mines).Error)
	require.Len(t, mines, 2)
	assert.Equal(t, mines[0].ID, *mines[1].PreviousMineID)

	anomalies, err := b.MultiHeadChains(ctx)
	require.NoError(t, err)
	assert.Empty(t, anomalies)
}

func TestRecordTurn_SeedsHeadFromStore(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	_, err := b.RecordTurn(ctx, core.TurnRecord{State: testState(t, "g1", stateOpts{turn: 0})})
	require.NoError(t, err)
	last, err := b.RecordTurn(ctx, core.TurnRecord{State: testState(t, "g1", stateOpts{turn: 1})})
	require.NoError(t, err)

	// a second writer with an empty cache continues the same chain
	other := New(Dependencies{DB: b.DB(), Logger: zerolog.Nop()})
	id, err := other.RecordTurn(ctx, core.TurnRecord{State: testState(t, "g1", stateOpts{turn: 2})})
	require.NoError(t, err)

	var turn model.Turn
	require.NoError(t, b.DB().First(&turn, id).Error)
	assert.Equal(t, uint(3), turn.Seq)
	assert.Equal(t, last, *turn.PreviousTurnID)
}

func TestRecordTurn_HeroRows(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	rec := core.TurnRecord{
		State: testState(t, "g1", stateOpts{turn: 3, life: [core.HeroCount]int{70, 40, 40, 40}}),
		Died:  [core.HeroCount]bool{true, false, false, false},
	}
	turnID, err := b.RecordTurn(ctx, rec)
	require.NoError(t, err)

	var heroes []model.Hero
	require.NoError(t, b.DB().Where("turn_id = ?", turnID).Order("in_game_id").Find(&heroes).Error)
	require.Len(t, heroes, 4)

	assert.True(t, heroes[0].Died)
	assert.Equal(t, 70, heroes[0].Life)
	require.NotNil(t, heroes[0].UserID)
	assert.Equal(t, "u1", *heroes[0].UserID)
	assert.JSONEq(t, `[2]`, string(heroes[0].TavernDistances))
	for _, h := range heroes[1:] {
		assert.False(t, h.Died)
	}
	assert.Nil(t, heroes[2].UserID)
}

func TestRecordTurn_MineOwnerIsHeroRow(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	turnID, err := b.RecordTurn(ctx, core.TurnRecord{State: testState(t, "g1", stateOpts{mineOwner: 2})})
	require.NoError(t, err)

	var owner model.Hero
	require.NoError(t, b.DB().Where("turn_id = ? AND in_game_id = ?", turnID, 2).First(&owner).Error)

	var mines []model.Mine
	require.NoError(t, b.DB().Where("turn_id = ?", turnID).Order("mine_number").Find(&mines).Error)
	require.Len(t, mines, 2)
	assert.Equal(t, 1, mines[0].MineNumber)
	require.NotNil(t, mines[0].OwnerHeroID)
	assert.Equal(t, owner.ID, *mines[0].OwnerHeroID)
	assert.JSONEq(t, `[2,1]`, string(mines[0].Pos))
	assert.Nil(t, mines[1].OwnerHeroID)
}

func TestRecordTurn_FinishedIsSetOnce(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	require.NoError(t, b.StartGame(ctx, testState(t, "g1", stateOpts{})))

	finished := func() bool {
		var g model.Game
		require.NoError(t, b.DB().First(&g, "game_id = ?", "g1").Error)
		return g.Finished
	}

	_, err := b.RecordTurn(ctx, core.TurnRecord{State: testState(t, "g1", stateOpts{turn: 0})})
	require.NoError(t, err)
	assert.False(t, finished())

	_, err = b.RecordTurn(ctx, core.TurnRecord{State: testState(t, "g1", stateOpts{turn: 1, finished: true})})
	require.NoError(t, err)
	assert.True(t, finished())

	_, err = b.RecordTurn(ctx, core.TurnRecord{State: testState(t, "g1", stateOpts{turn: 2})})
	require.NoError(t, err)
	assert.True(t, finished())
}

func TestRecordTurn_FailureLeavesCache(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	_, err := b.RecordTurn(ctx, core.TurnRecord{State: testState(t, "g1", stateOpts{turn: 0})})
	require.NoError(t, err)

	// a foreign row occupies the next sequence number
	require.NoError(t, b.DB().Create(&model.Turn{GameID: "g1", Seq: 2, Turn: 99}).Error)

	_, err = b.RecordTurn(ctx, core.TurnRecord{State: testState(t, "g1", stateOpts{turn: 1})})
	require.Error(t, err)
	assert.True(t, isDuplicateKey(err))

	h, ok := b.deps.Heads.Get(cache.HeadKey{GameID: "g1", Chain: cache.ChainTurn})
	require.True(t, ok)
	assert.Equal(t, uint(1), h.Seq)

	var heroes int64
	require.NoError(t, b.DB().Model(&model.Hero{}).Count(&heroes).Error)
	assert.Equal(t, int64(4), heroes)
}

func TestEndGame_ForgetsHeads(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	_, err := b.RecordTurn(ctx, core.TurnRecord{State: testState(t, "g1", stateOpts{})})
	require.NoError(t, err)
	assert.Equal(t, 3, b.deps.Heads.Len())

	b.EndGame("g1")
	assert.Equal(t, 0, b.deps.Heads.Len())
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(errors.New("UNIQUE constraint failed: turns.game_id, turns.seq")))
	assert.True(t, isDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_turn_chain" (SQLSTATE 23505)`)))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
}

func TestLink(t *testing.T) {
	seq, prev := link(cache.Head{}, false)
	assert.Equal(t, uint(1), seq)
	assert.Nil(t, prev)

	seq, prev = link(cache.Head{ID: 7, Seq: 4}, true)
	assert.Equal(t, uint(5), seq)
	require.NotNil(t, prev)
	assert.Equal(t, uint(7), *prev)
}
