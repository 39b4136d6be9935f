package parser

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	return NewParser(zerolog.Nop())
}

// sampleTiles is a 4x4 board:
//
//	@1    @2
//	  $-[]
//	  $1##
//	@3    @4
const sampleTiles = "@1    @2" + "  $-[]  " + "  $1##  " + "@3    @4"

func wireHeroFixture(id int, row, col int) map[string]any {
	return map[string]any{
		"id":        id,
		"name":      []string{"", "alpha", "bravo", "charlie", "delta"}[id],
		"userId":    []string{"", "u1", "u2", "u3", "u4"}[id],
		"elo":       1200 + id,
		"pos":       map[string]any{"x": row, "y": col},
		"spawnPos":  map[string]any{"x": row, "y": col},
		"lastDir":   "Stay",
		"life":      100,
		"gold":      id * 10,
		"mineCount": 0,
		"crashed":   false,
	}
}

func gameFixture() map[string]any {
	return map[string]any{
		"id":       "abc",
		"turn":     4,
		"maxTurns": 1200,
		"heroes": []any{
			wireHeroFixture(1, 0, 0),
			wireHeroFixture(2, 0, 3),
			wireHeroFixture(3, 3, 0),
			wireHeroFixture(4, 3, 3),
		},
		"board":    map[string]any{"size": 4, "tiles": sampleTiles},
		"finished": false,
	}
}

func encode(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
