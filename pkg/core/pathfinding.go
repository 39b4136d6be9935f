package core

import "math"

// Unreachable is the fill value for cells a search never reaches.
const Unreachable = math.MaxInt32

// DistanceMap holds one distance per board cell, indexed [x][y].
type DistanceMap [][]int

// At returns the distance stored for p.
func (m DistanceMap) At(p Position) int {
	return m[p.X][p.Y]
}

// Sample returns the distances stored for each of the given cells, in order.
func (m DistanceMap) Sample(cells []Position) []int {
	out := make([]int, len(cells))
	for i, p := range cells {
		out[i] = m.At(p)
	}
	return out
}

// BFS computes step counts from origin to every cell.
//
// Impassable cells still receive the distance at which the search touched them,
// but the search does not continue through them. Hero cells are expanded only when
// passThroughHeroes is set. Cells never touched keep fill.
func (b *Board) BFS(origin Position, passThroughHeroes bool, fill int) DistanceMap {
	dist := make(DistanceMap, b.size)
	seen := make([][]bool, b.size)
	for x := range dist {
		dist[x] = make([]int, b.size)
		seen[x] = make([]bool, b.size)
		for y := range dist[x] {
			dist[x][y] = fill
		}
	}

	dist[origin.X][origin.Y] = 0
	seen[origin.X][origin.Y] = true
	queue := []Position{origin}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cost := dist[cur.X][cur.Y]

		for _, d := range Directions {
			next := b.To(cur, d)
			if seen[next.X][next.Y] {
				continue
			}
			seen[next.X][next.Y] = true
			dist[next.X][next.Y] = cost + 1

			if b.Passable(next) && (passThroughHeroes || b.Tile(next).Kind != TileHero) {
				queue = append(queue, next)
			}
		}
	}

	return dist
}
