package core

import "fmt"

// Direction is a move order as spelled by the game server.
type Direction string

const (
	North Direction = "North"
	East  Direction = "East"
	South Direction = "South"
	West  Direction = "West"
	Stay  Direction = "Stay"
)

// Directions lists every move in search order.
var Directions = []Direction{North, East, South, West, Stay}

// Delta returns the column and row offsets of the move.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

// Valid reports whether d is one of the five known moves.
func (d Direction) Valid() bool {
	switch d {
	case North, East, South, West, Stay:
		return true
	}
	return false
}

func directionBetween(from, to Position) (Direction, error) {
	dx, dy := to.X-from.X, to.Y-from.Y
	for _, d := range Directions {
		if ddx, ddy := d.Delta(); ddx == dx && ddy == dy {
			return d, nil
		}
	}
	return "", fmt.Errorf("cells %v and %v are not adjacent", from, to)
}

// PathToDirections converts a cell path into the moves that walk it.
// Paths shorter than two cells yield a single Stay.
func PathToDirections(path []Position) ([]Direction, error) {
	if len(path) <= 1 {
		return []Direction{Stay}, nil
	}

	moves := make([]Direction, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		d, err := directionBetween(path[i-1], path[i])
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		moves = append(moves, d)
	}
	return moves, nil
}

// FirstDirection returns only the first move of a path.
func FirstDirection(path []Position) (Direction, error) {
	if len(path) <= 1 {
		return Stay, nil
	}
	return directionBetween(path[0], path[1])
}
