// Package convert translates between core game values and GORM rows.
package convert

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/vindinium-archive/recorder/internal/model"
	"github.com/vindinium-archive/recorder/pkg/core"
)

// PositionFromModel decodes an [x, y] column.
func PositionFromModel(j datatypes.JSON) (core.Position, error) {
	var xy []int
	if err := json.Unmarshal(j, &xy); err != nil {
		return core.Position{}, fmt.Errorf("decode position: %w", err)
	}
	if len(xy) != 2 {
		return core.Position{}, fmt.Errorf("decode position: got %d coordinates", len(xy))
	}
	return core.Position{X: xy[0], Y: xy[1]}, nil
}

// DistancesFromModel decodes the distance columns of a Heroes row.
func DistancesFromModel(h model.Hero) (core.Distances, error) {
	var d core.Distances
	columns := []struct {
		name string
		src  datatypes.JSON
		dst  *[]int
	}{
		{"heroDistances", h.HeroDistances, &d.Heroes},
		{"heroObstructedDistances", h.HeroObstructedDistances, &d.HeroesObstructed},
		{"tavernDistances", h.TavernDistances, &d.Taverns},
		{"tavernObstructedDistances", h.TavernObstructedDistances, &d.TavernsObstructed},
		{"mineDistances", h.MineDistances, &d.Mines},
		{"mineObstructedDistances", h.MineObstructedDistances, &d.MinesObstructed},
	}

	for _, c := range columns {
		if err := json.Unmarshal(c.src, c.dst); err != nil {
			return core.Distances{}, fmt.Errorf("decode %s: %w", c.name, err)
		}
	}
	return d, nil
}

// HeroFromModel rebuilds the stored attributes of a hero. Name and Elo are not
// part of the per-turn row and stay empty.
func HeroFromModel(h model.Hero) (core.Hero, error) {
	pos, err := PositionFromModel(h.Pos)
	if err != nil {
		return core.Hero{}, err
	}
	spawn, err := PositionFromModel(h.SpawnPos)
	if err != nil {
		return core.Hero{}, err
	}

	out := core.Hero{
		ID:        h.InGameID,
		Pos:       pos,
		SpawnPos:  spawn,
		Life:      h.Life,
		Gold:      h.Gold,
		MineCount: h.MineCount,
		Crashed:   h.Crashed,
	}
	if h.UserID != nil {
		out.UserID = *h.UserID
	}
	if h.LastDir != nil {
		out.LastDir = core.Direction(*h.LastDir)
	}
	return out, nil
}
