package storage

import (
	"context"

	"github.com/vindinium-archive/recorder/pkg/core"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// StartGame records the game row and the bots seen in its first payload.
	StartGame(ctx context.Context, state *core.GameState) error

	// RecordTurn appends one turn with its heroes and mines in a single
	// transaction and returns the id of the new turn row.
	RecordTurn(ctx context.Context, rec core.TurnRecord) (uint, error)

	// EndGame releases any per-game state held by the backend.
	EndGame(gameID string)
}
