package core

import (
	"errors"
	"fmt"
)

// ErrNonAdjacentTurns is returned when death detection is asked to compare states
// that are not exactly one turn apart.
var ErrNonAdjacentTurns = errors.New("states are not consecutive turns")

// DeathThresholds tunes the respawn heuristics.
//
// A hero counts as freshly dead when its life rose by more than HealthJump in one
// turn, or when it moved further than MaxStep cells. Both rely on spawn points never
// being adjacent, which holds for the arena's map generator.
type DeathThresholds struct {
	HealthJump int
	MaxStep    int
}

// DefaultDeathThresholds matches the server rules: a tavern heals at most
// TavernHealth and a hero moves at most one cell per turn.
var DefaultDeathThresholds = DeathThresholds{
	HealthJump: TavernHealth,
	MaxStep:    1,
}

// FreshlyDead flags, per hero index, the heroes that died between prev and next.
func (t DeathThresholds) FreshlyDead(prev, next *GameState) ([HeroCount]bool, error) {
	var dead [HeroCount]bool
	if prev.Turn+1 != next.Turn {
		return dead, fmt.Errorf("%w: game %s turn %d then %d", ErrNonAdjacentTurns, next.ID, prev.Turn, next.Turn)
	}

	for i := range next.Heroes {
		before, after := prev.Heroes[i], next.Heroes[i]
		healed := after.Life - before.Life
		moved := L1Distance(before.Pos, after.Pos)
		dead[i] = healed > t.HealthJump || moved > t.MaxStep
	}
	return dead, nil
}

// FreshlyDeadHeroes returns the heroes of next that died since prev under the
// default thresholds.
func FreshlyDeadHeroes(prev, next *GameState) ([]Hero, error) {
	flags, err := DefaultDeathThresholds.FreshlyDead(prev, next)
	if err != nil {
		return nil, err
	}
	var out []Hero
	for i, dead := range flags {
		if dead {
			out = append(out, next.Heroes[i])
		}
	}
	return out, nil
}
