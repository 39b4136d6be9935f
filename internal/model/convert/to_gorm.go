package convert

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/vindinium-archive/recorder/internal/model"
	"github.com/vindinium-archive/recorder/pkg/core"
)

// intsJSON encodes an integer array column. Integer slices always marshal.
func intsJSON(v []int) datatypes.JSON {
	if v == nil {
		v = []int{}
	}
	b, _ := json.Marshal(v)
	return datatypes.JSON(b)
}

// positionJSON encodes a cell as [x, y].
func positionJSON(p core.Position) datatypes.JSON {
	return intsJSON([]int{p.X, p.Y})
}

// GameToModel builds the Games row from the first observed state.
func GameToModel(s *core.GameState, insertedAt time.Time) model.Game {
	return model.Game{
		GameID:     s.ID,
		InsertedAt: insertedAt,
		BoardSize:  s.Board.Size(),
		MineCount:  len(s.Mines),
		Finished:   s.Finished,
	}
}

// TurnToModel builds a Turns row. Chain fields are filled in by the persistor.
func TurnToModel(s *core.GameState) model.Turn {
	return model.Turn{
		GameID:     s.ID,
		Turn:       s.Turn,
		RawPayload: datatypes.JSON(s.Raw),
	}
}

// HeroToModel builds a Heroes row for h, computing both distance variants.
func HeroToModel(s *core.GameState, h core.Hero, turnID uint, died bool) model.Hero {
	d := s.DistancesFor(h)

	row := model.Hero{
		GameID:    s.ID,
		TurnID:    turnID,
		InGameID:  h.ID,
		Life:      h.Life,
		Gold:      h.Gold,
		MineCount: h.MineCount,
		Died:      died,
		Pos:       positionJSON(h.Pos),
		SpawnPos:  positionJSON(h.SpawnPos),
		Crashed:   h.Crashed,

		HeroDistances:             intsJSON(d.Heroes),
		HeroObstructedDistances:   intsJSON(d.HeroesObstructed),
		TavernDistances:           intsJSON(d.Taverns),
		TavernObstructedDistances: intsJSON(d.TavernsObstructed),
		MineDistances:             intsJSON(d.Mines),
		MineObstructedDistances:   intsJSON(d.MinesObstructed),
	}
	if h.UserID != "" {
		userID := h.UserID
		row.UserID = &userID
	}
	if h.LastDir != "" {
		dir := string(h.LastDir)
		row.LastDir = &dir
	}
	return row
}

// MineToModel builds a Mines row for the mine at index i of s.Mines.
// heroRowIDs holds the Heroes row ids of this turn, in hero id order.
func MineToModel(s *core.GameState, i int, turnID uint, heroRowIDs [core.HeroCount]uint) model.Mine {
	pos := s.Mines[i]
	row := model.Mine{
		GameID:     s.ID,
		MineNumber: i + 1,
		TurnID:     turnID,
		Pos:        positionJSON(pos),
	}
	if tile := s.Board.Tile(pos); tile.Owned() {
		owner := heroRowIDs[tile.Owner-1]
		row.OwnerHeroID = &owner
	}
	return row
}

// BotToModel builds the Bots aggregate row for h.
func BotToModel(h core.Hero) model.Bot {
	return model.Bot{
		UserID: h.UserID,
		Name:   h.Name,
		Elo:    h.Elo,
	}
}

// HistoricalBotToModel builds a HistoricalBots chain row for h joining gameID.
func HistoricalBotToModel(h core.Hero, gameID string) model.HistoricalBot {
	return model.HistoricalBot{
		UserID:     h.UserID,
		LastGameID: gameID,
		Elo:        h.Elo,
	}
}
