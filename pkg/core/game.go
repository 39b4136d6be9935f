// pkg/core/game.go
package core

import "fmt"

// Game rules of the arena server.
const (
	HeroCount       = 4
	MineCost        = 20
	TavernHealth    = 50
	TavernCost      = 2
	HeroMaxHealth   = 100
	HeroAttackPower = 20
)

// Hero is one of the four players of a game at a given turn.
type Hero struct {
	ID        int
	UserID    string // empty for training bots
	Name      string
	Elo       int
	Pos       Position
	SpawnPos  Position
	LastDir   Direction // empty before the first move
	Life      int
	Gold      int
	MineCount int
	Crashed   bool
}

// GameState is one decoded turn of a game. It is not modified after construction.
type GameState struct {
	ID       string
	Turn     int
	MaxTurns int
	Finished bool
	Board    *Board
	Heroes   [HeroCount]Hero

	Mines   []Position
	Taverns []Position

	// Raw is the normalized payload the state was decoded from.
	Raw []byte
}

// NewGameState assembles a state and derives mine and tavern locations from the board.
// Heroes must be ordered by id, 1 through 4.
func NewGameState(id string, turn, maxTurns int, finished bool, board *Board, heroes [HeroCount]Hero, raw []byte) (*GameState, error) {
	if board == nil {
		return nil, fmt.Errorf("game %s: board is nil", id)
	}
	for i, h := range heroes {
		if h.ID != i+1 {
			return nil, fmt.Errorf("game %s: hero at index %d has id %d", id, i, h.ID)
		}
		if !board.Contains(h.Pos) {
			return nil, fmt.Errorf("game %s: hero %d at %v is off the board", id, h.ID, h.Pos)
		}
	}

	return &GameState{
		ID:       id,
		Turn:     turn,
		MaxTurns: maxTurns,
		Finished: finished,
		Board:    board,
		Heroes:   heroes,
		Mines:    board.Locations(TileMine),
		Taverns:  board.Locations(TileTavern),
		Raw:      raw,
	}, nil
}

// HeroTurn is the turn counted in rounds of four hero moves.
func (s *GameState) HeroTurn() int {
	return s.Turn / HeroCount
}

// MaxHeroTurns is MaxTurns counted in rounds.
func (s *GameState) MaxHeroTurns() int {
	return s.MaxTurns / HeroCount
}

// HeroByID returns the hero with the given in-game id.
func (s *GameState) HeroByID(id int) (Hero, bool) {
	for _, h := range s.Heroes {
		if h.ID == id {
			return h, true
		}
	}
	return Hero{}, false
}

// HeroesInRange returns heroes within Manhattan distance r of p, in id order.
// Terrain between them is ignored.
func (s *GameState) HeroesInRange(p Position, r int) []Hero {
	var out []Hero
	for _, h := range s.Heroes {
		if L1Distance(p, h.Pos) <= r {
			out = append(out, h)
		}
	}
	return out
}

// HeroPositions returns every hero position in id order.
func (s *GameState) HeroPositions() []Position {
	out := make([]Position, HeroCount)
	for i, h := range s.Heroes {
		out[i] = h.Pos
	}
	return out
}

// TurnRecord is a decoded turn together with the heroes detected as freshly dead
// since the previous turn, indexed like Heroes.
type TurnRecord struct {
	State *GameState
	Died  [HeroCount]bool
}
