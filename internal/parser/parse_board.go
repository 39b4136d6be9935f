package parser

import (
	"github.com/vindinium-archive/recorder/pkg/core"
)

// tokenWidth is the number of characters encoding one board cell.
const tokenWidth = 2

// parseTiles decodes the row-major tile string into column-major tiles,
// so that the result is indexed tiles[x][y].
func parseTiles(size int, encoded string) ([][]core.Tile, error) {
	if size <= 0 {
		return nil, decodeErr("board.size", "must be positive, got %d", size)
	}
	if want := size * size * tokenWidth; len(encoded) != want {
		return nil, decodeErr("board.tiles", "got %d characters, want %d for size %d", len(encoded), want, size)
	}

	tiles := make([][]core.Tile, size)
	for x := range tiles {
		tiles[x] = make([]core.Tile, size)
	}

	for k := 0; k < size*size; k++ {
		tok := encoded[k*tokenWidth : (k+1)*tokenWidth]
		tile, ok := parseTile(tok)
		if !ok {
			return nil, decodeErr("board.tiles", "unknown tile %q at cell %d", tok, k)
		}
		row, col := k/size, k%size
		tiles[col][row] = tile
	}
	return tiles, nil
}

func parseTile(tok string) (core.Tile, bool) {
	switch tok {
	case "  ":
		return core.Tile{Kind: core.TileAir}, true
	case "##":
		return core.Tile{Kind: core.TileWall}, true
	case "[]":
		return core.Tile{Kind: core.TileTavern}, true
	case "$-":
		return core.Tile{Kind: core.TileMine, Owner: core.NoOwner}, true
	}

	owner, ok := heroDigit(tok[1])
	if !ok {
		return core.Tile{}, false
	}
	switch tok[0] {
	case '$':
		return core.Tile{Kind: core.TileMine, Owner: owner}, true
	case '@':
		return core.Tile{Kind: core.TileHero, Owner: owner}, true
	}
	return core.Tile{}, false
}

func heroDigit(c byte) (int, bool) {
	if c < '1' || c > '0'+core.HeroCount {
		return 0, false
	}
	return int(c - '0'), true
}
