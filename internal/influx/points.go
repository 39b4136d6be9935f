package influx

import (
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/vindinium-archive/recorder/pkg/core"
)

// TurnPoint summarizes one recorded turn.
func TurnPoint(s *core.GameState, died [core.HeroCount]bool, at time.Time) *influxdb2_write.Point {
	deaths := 0
	for _, d := range died {
		if d {
			deaths++
		}
	}
	owned := 0
	gold := 0
	for _, h := range s.Heroes {
		owned += h.MineCount
		gold += h.Gold
	}

	return influxdb2_write.NewPoint(
		"turn",
		map[string]string{"game_id": s.ID},
		map[string]interface{}{
			"turn":        s.Turn,
			"hero_turn":   s.HeroTurn(),
			"max_turns":   s.MaxTurns,
			"finished":    s.Finished,
			"deaths":      deaths,
			"mines":       len(s.Mines),
			"mines_owned": owned,
			"gold":        gold,
		},
		at,
	)
}

// StatusProgram tags the status points.
const StatusProgram = "arena_recorder"

// StatusPoint reports the recorder's worker counts.
func StatusPoint(active, started, failed int, at time.Time) *influxdb2_write.Point {
	return influxdb2_write.NewPoint(
		"recorder_status",
		map[string]string{"program": StatusProgram},
		map[string]interface{}{
			"active_workers":  active,
			"started_workers": started,
			"failed_workers":  failed,
		},
		at,
	)
}
