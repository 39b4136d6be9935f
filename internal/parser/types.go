package parser

// Wire shapes of the arena server's game payload. Pointer fields are required and
// checked after decoding so that a missing field is told apart from a zero value.

type wireGame struct {
	ID       *string    `json:"id"`
	Turn     *int       `json:"turn"`
	MaxTurns *int       `json:"maxTurns"`
	Heroes   []wireHero `json:"heroes"`
	Board    *wireBoard `json:"board"`
	Finished *bool      `json:"finished"`
}

type wireBoard struct {
	Size  *int    `json:"size"`
	Tiles *string `json:"tiles"`
}

// wirePos carries the row in X and the column in Y.
type wirePos struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type wireHero struct {
	ID        *int     `json:"id"`
	Name      *string  `json:"name"`
	UserID    *string  `json:"userId"`
	Elo       *int     `json:"elo"`
	Pos       *wirePos `json:"pos"`
	SpawnPos  *wirePos `json:"spawnPos"`
	LastDir   *string  `json:"lastDir"`
	Life      *int     `json:"life"`
	Gold      *int     `json:"gold"`
	MineCount *int     `json:"mineCount"`
	Crashed   *bool    `json:"crashed"`
}
