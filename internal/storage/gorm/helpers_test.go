package gormstorage

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vindinium-archive/recorder/internal/cache"
	"github.com/vindinium-archive/recorder/internal/database"
	"github.com/vindinium-archive/recorder/pkg/core"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()

	db, err := database.OpenSqlite("")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	b := New(Dependencies{
		DB:     db,
		Heads:  cache.NewHeadCache(),
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return testTime },
	})
	require.NoError(t, b.Init())
	return b
}

// stateOpts tweaks the state built by testState.
type stateOpts struct {
	turn      int
	finished  bool
	mineOwner int
	life      [core.HeroCount]int
	elo       int
}

// testState builds a 4x4 game with a tavern at (1,1) and mines at (2,1) and (2,2).
// The first mine belongs to opts.mineOwner. Heroes 1 and 2 have user ids.
func testState(t *testing.T, gameID string, opts stateOpts) *core.GameState {
	t.Helper()

	tiles := make([][]core.Tile, 4)
	for x := range tiles {
		tiles[x] = make([]core.Tile, 4)
	}
	tiles[1][1] = core.Tile{Kind: core.TileTavern}
	tiles[2][1] = core.Tile{Kind: core.TileMine, Owner: opts.mineOwner}
	tiles[2][2] = core.Tile{Kind: core.TileMine}

	corners := []core.Position{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 0, Y: 3}, {X: 3, Y: 3}}
	var heroes [core.HeroCount]core.Hero
	for i, p := range corners {
		tiles[p.X][p.Y] = core.Tile{Kind: core.TileHero, Owner: i + 1}
		life := opts.life[i]
		if life == 0 {
			life = 100
		}
		heroes[i] = core.Hero{ID: i + 1, Name: "bot", Pos: p, SpawnPos: p, Life: life, Elo: opts.elo}
	}
	heroes[0].UserID = "u1"
	heroes[0].Name = "alpha"
	heroes[1].UserID = "u2"
	heroes[1].Name = "beta"

	board, err := core.NewBoard(4, tiles)
	require.NoError(t, err)
	s, err := core.NewGameState(gameID, opts.turn, 1200, opts.finished, board, heroes, []byte(`{"id":"`+gameID+`"}`))
	require.NoError(t, err)
	return s
}
