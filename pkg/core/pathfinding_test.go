package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBFS_OriginIsZero(t *testing.T) {
	b := boardFromRows(t,
		"@1  ##  ",
		"  []$-  ",
		"##  @2  ",
		"$1      ",
	)

	for x := 0; x < b.Size(); x++ {
		for y := 0; y < b.Size(); y++ {
			origin := Position{x, y}
			for _, through := range []bool{true, false} {
				assert.Equal(t, 0, b.BFS(origin, through, Unreachable).At(origin), "origin %v through=%v", origin, through)
			}
		}
	}
}

func TestBFS_ImpassableCellsAreTouched(t *testing.T) {
	b := boardFromRows(t,
		"@1    ",
		"####  ",
		"$-    ",
	)

	want := DistanceMap{
		{0, 1, 6},
		{1, 2, 5},
		{2, 3, 4},
	}

	for _, through := range []bool{true, false} {
		got := b.BFS(Position{0, 0}, through, Unreachable)
		assert.Equal(t, want, got, "through=%v", through)
	}
}

func TestBFS_HeroesBlockUnlessPassedThrough(t *testing.T) {
	b := boardFromRows(t,
		"@1@2  ",
		"####  ",
		"      ",
	)
	origin := Position{0, 0}

	blocked := b.BFS(origin, false, Unreachable)
	assert.Equal(t, 1, blocked.At(Position{1, 0}), "blocking hero still gets a touch distance")
	assert.Equal(t, 1, blocked.At(Position{0, 1}))
	assert.Equal(t, Unreachable, blocked.At(Position{2, 0}))
	assert.Equal(t, Unreachable, blocked.At(Position{0, 2}))
	assert.Equal(t, Unreachable, blocked.At(Position{1, 1}))

	open := b.BFS(origin, true, Unreachable)
	assert.Equal(t, 1, open.At(Position{1, 0}))
	assert.Equal(t, 2, open.At(Position{2, 0}))
	assert.Equal(t, 2, open.At(Position{1, 1}))
	assert.Equal(t, 4, open.At(Position{2, 2}))
	assert.Equal(t, 6, open.At(Position{0, 2}))
}

func TestBFS_WallsNeverExpand(t *testing.T) {
	b := boardFromRows(t,
		"  ##  ",
		"####  ",
		"      ",
	)

	dist := b.BFS(Position{0, 0}, true, -1)
	assert.Equal(t, 1, dist.At(Position{1, 0}))
	assert.Equal(t, 1, dist.At(Position{0, 1}))
	assert.Equal(t, -1, dist.At(Position{2, 0}), "fill value is kept")
	assert.Equal(t, -1, dist.At(Position{1, 1}))
	assert.Equal(t, -1, dist.At(Position{2, 2}))
}

func TestBFS_OpenBoardIsManhattan(t *testing.T) {
	b := openBoard(t, 5)
	origin := Position{1, 3}

	dist := b.BFS(origin, false, Unreachable)
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			assert.Equal(t, L1Distance(origin, Position{x, y}), dist[x][y])
		}
	}
}

func TestDistanceMap_Sample(t *testing.T) {
	m := DistanceMap{{0, 1}, {1, 2}}
	assert.Equal(t, []int{2, 0, 1}, m.Sample([]Position{{1, 1}, {0, 0}, {0, 1}}))
	assert.Empty(t, m.Sample(nil))
}
