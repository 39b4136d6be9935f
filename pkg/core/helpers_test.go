package core

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// boardFromRows builds a board from rows of two-character tokens, top row first.
func boardFromRows(t *testing.T, rows ...string) *Board {
	t.Helper()

	size := len(rows)
	tiles := make([][]Tile, size)
	for x := range tiles {
		tiles[x] = make([]Tile, size)
	}
	for y, row := range rows {
		require.Len(t, row, size*2, "row %d", y)
		for x := 0; x < size; x++ {
			tiles[x][y] = tileFromToken(t, row[2*x:2*x+2])
		}
	}

	b, err := NewBoard(size, tiles)
	require.NoError(t, err)
	return b
}

func tileFromToken(t *testing.T, tok string) Tile {
	t.Helper()

	switch {
	case tok == "  ":
		return Tile{Kind: TileAir}
	case tok == "##":
		return Tile{Kind: TileWall}
	case tok == "[]":
		return Tile{Kind: TileTavern}
	case tok == "$-":
		return Tile{Kind: TileMine}
	case tok[0] == '$':
		id, err := strconv.Atoi(tok[1:])
		require.NoError(t, err)
		return Tile{Kind: TileMine, Owner: id}
	case tok[0] == '@':
		id, err := strconv.Atoi(tok[1:])
		require.NoError(t, err)
		return Tile{Kind: TileHero, Owner: id}
	}
	t.Fatalf("unknown token %q", tok)
	return Tile{}
}

func openBoard(t *testing.T, size int) *Board {
	t.Helper()

	rows := make([]string, size)
	for i := range rows {
		for j := 0; j < size; j++ {
			rows[i] += "  "
		}
	}
	return boardFromRows(t, rows...)
}

// stateWith places the four heroes on an open 6x6 board.
func stateWith(t *testing.T, turn int, heroes [HeroCount]Hero) *GameState {
	t.Helper()

	for i := range heroes {
		heroes[i].ID = i + 1
	}
	s, err := NewGameState("abc", turn, 1200, false, openBoard(t, 6), heroes, nil)
	require.NoError(t, err)
	return s
}
