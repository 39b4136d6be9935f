// pkg/core/tile.go
package core

import "fmt"

// TileKind identifies what occupies a board cell.
type TileKind uint8

const (
	TileAir TileKind = iota
	TileWall
	TileTavern
	TileMine
	TileHero
)

func (k TileKind) String() string {
	switch k {
	case TileAir:
		return "air"
	case TileWall:
		return "wall"
	case TileTavern:
		return "tavern"
	case TileMine:
		return "mine"
	case TileHero:
		return "hero"
	default:
		return fmt.Sprintf("TileKind(%d)", uint8(k))
	}
}

// NoOwner marks a mine nobody holds. Hero ids start at 1.
const NoOwner = 0

// Tile is one board cell. Owner is the in-game hero id for mines and heroes,
// NoOwner otherwise.
type Tile struct {
	Kind  TileKind
	Owner int
}

// Owned reports whether the tile carries a hero id.
func (t Tile) Owned() bool {
	return t.Owner != NoOwner
}

// Position is a board cell. X is the column, Y the row.
type Position struct {
	X int
	Y int
}

// L1Distance returns the Manhattan distance between two cells.
func L1Distance(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
