package core

// Distances are the pathfinding features stored for one hero at one turn.
// Each slice is sampled from a distance map rooted at the hero: heroes in id order,
// taverns and mines in the state's location order. The plain variants route around
// other heroes; the Obstructed variants walk through them, matching the column
// names of the recorded history.
type Distances struct {
	Heroes            []int
	HeroesObstructed  []int
	Taverns           []int
	TavernsObstructed []int
	Mines             []int
	MinesObstructed   []int
}

// DistancesFor runs both searches from h and samples them.
func (s *GameState) DistancesFor(h Hero) Distances {
	blocked := s.Board.BFS(h.Pos, false, Unreachable)
	through := s.Board.BFS(h.Pos, true, Unreachable)
	heroes := s.HeroPositions()

	return Distances{
		Heroes:            blocked.Sample(heroes),
		HeroesObstructed:  through.Sample(heroes),
		Taverns:           blocked.Sample(s.Taverns),
		TavernsObstructed: through.Sample(s.Taverns),
		Mines:             blocked.Sample(s.Mines),
		MinesObstructed:   through.Sample(s.Mines),
	}
}
