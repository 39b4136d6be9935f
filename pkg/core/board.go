// pkg/core/board.go
package core

import "fmt"

// Board is a square grid of tiles indexed tiles[x][y].
type Board struct {
	size  int
	tiles [][]Tile
}

// NewBoard builds a board from column-major tiles. Every column must hold size tiles.
func NewBoard(size int, tiles [][]Tile) (*Board, error) {
	if size <= 0 {
		return nil, fmt.Errorf("board size must be positive, got %d", size)
	}
	if len(tiles) != size {
		return nil, fmt.Errorf("board has %d columns, want %d", len(tiles), size)
	}
	for x, column := range tiles {
		if len(column) != size {
			return nil, fmt.Errorf("board column %d has %d rows, want %d", x, len(column), size)
		}
	}
	return &Board{size: size, tiles: tiles}, nil
}

// Size returns the edge length of the board.
func (b *Board) Size() int {
	return b.size
}

// Contains reports whether p lies on the board.
func (b *Board) Contains(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < b.size && p.Y < b.size
}

// Tile returns the tile at p. p must be on the board.
func (b *Board) Tile(p Position) Tile {
	return b.tiles[p.X][p.Y]
}

// Passable reports whether a hero may stand on p, ignoring other heroes.
func (b *Board) Passable(p Position) bool {
	switch b.Tile(p).Kind {
	case TileWall, TileTavern, TileMine:
		return false
	}
	return true
}

// To returns the cell reached by moving from p in direction d.
// Moves off the edge clamp to the boundary.
func (b *Board) To(p Position, d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: clamp(p.X+dx, b.size), Y: clamp(p.Y+dy, b.size)}
}

// ToStayOnImpassable is To, except that moving into a wall, tavern, mine or hero
// leaves the hero where it was.
func (b *Board) ToStayOnImpassable(p Position, d Direction) Position {
	next := b.To(p, d)
	switch b.Tile(next).Kind {
	case TileWall, TileTavern, TileMine, TileHero:
		return p
	}
	return next
}

// MeaningfulDirection reports whether ordering d from p differs from Stay.
// Leaving the board or bumping into a wall or hero is not meaningful.
// Stay itself is.
func (b *Board) MeaningfulDirection(p Position, d Direction) bool {
	if d == Stay {
		return true
	}
	dx, dy := d.Delta()
	next := Position{X: p.X + dx, Y: p.Y + dy}
	if !b.Contains(next) {
		return false
	}
	switch b.Tile(next).Kind {
	case TileWall, TileHero:
		return false
	}
	return true
}

// Locations returns every cell of the given kind, scanning columns left to right
// and each column top to bottom.
func (b *Board) Locations(kind TileKind) []Position {
	var out []Position
	for x := range b.tiles {
		for y := range b.tiles[x] {
			if b.tiles[x][y].Kind == kind {
				out = append(out, Position{X: x, Y: y})
			}
		}
	}
	return out
}

// HeroIDsInRange returns the ids of heroes standing within Manhattan distance r of p.
func (b *Board) HeroIDsInRange(p Position, r int) []int {
	var ids []int
	for _, loc := range b.Locations(TileHero) {
		if L1Distance(p, loc) <= r {
			ids = append(ids, b.Tile(loc).Owner)
		}
	}
	return ids
}

func clamp(v, size int) int {
	if v < 0 {
		return 0
	}
	if v >= size {
		return size - 1
	}
	return v
}
