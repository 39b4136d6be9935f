package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vindinium-archive/recorder/pkg/core"
)

// DecodeError reports a payload that could not be turned into a game state.
// No partial state is ever returned alongside it.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return "decode payload: " + e.Err.Error()
	}
	return fmt.Sprintf("decode payload: %s: %s", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(field string, format string, args ...any) *DecodeError {
	return &DecodeError{Field: field, Err: fmt.Errorf(format, args...)}
}

// Parser turns raw feed payloads into domain values.
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a parser logging through logger.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger.With().Str("component", "parser").Logger()}
}

// ParseTurn decodes one turn payload of a game's event feed.
func (p *Parser) ParseTurn(raw string) (*core.GameState, error) {
	payload := strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(payload) == "" {
		return nil, &DecodeError{Err: fmt.Errorf("empty payload")}
	}

	normalized, err := NormalizeLiteral([]byte(payload))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	var envelope struct {
		Game *wireGame `json:"game"`
	}
	if err := json.Unmarshal(Envelope("game", normalized), &envelope); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if envelope.Game == nil {
		return nil, decodeErr("game", "payload is null")
	}

	state, err := envelope.Game.toState(normalized)
	if err != nil {
		return nil, err
	}

	p.logger.Trace().
		Str("game_id", state.ID).
		Int("turn", state.Turn).
		Bool("finished", state.Finished).
		Msg("Decoded turn")
	return state, nil
}

// ParseNowPlaying decodes one payload of the now-playing feed: a list of game ids.
func (p *Parser) ParseNowPlaying(raw string) ([]string, error) {
	normalized, err := NormalizeLiteral(bytes.TrimSpace([]byte(raw)))
	if err != nil {
		return nil, &DecodeError{Field: "now-playing", Err: err}
	}

	var ids []string
	if err := json.Unmarshal(normalized, &ids); err != nil {
		return nil, &DecodeError{Field: "now-playing", Err: err}
	}
	return ids, nil
}

func (g *wireGame) toState(raw []byte) (*core.GameState, error) {
	switch {
	case g.ID == nil:
		return nil, decodeErr("id", "missing")
	case g.Turn == nil:
		return nil, decodeErr("turn", "missing")
	case g.MaxTurns == nil:
		return nil, decodeErr("maxTurns", "missing")
	case g.Finished == nil:
		return nil, decodeErr("finished", "missing")
	case g.Board == nil:
		return nil, decodeErr("board", "missing")
	case g.Board.Size == nil:
		return nil, decodeErr("board.size", "missing")
	case g.Board.Tiles == nil:
		return nil, decodeErr("board.tiles", "missing")
	}

	tiles, err := parseTiles(*g.Board.Size, *g.Board.Tiles)
	if err != nil {
		return nil, err
	}
	board, err := core.NewBoard(*g.Board.Size, tiles)
	if err != nil {
		return nil, &DecodeError{Field: "board", Err: err}
	}

	heroes, err := parseHeroes(g.Heroes)
	if err != nil {
		return nil, err
	}

	state, err := core.NewGameState(*g.ID, *g.Turn, *g.MaxTurns, *g.Finished, board, heroes, raw)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return state, nil
}

func parseHeroes(wire []wireHero) ([core.HeroCount]core.Hero, error) {
	var heroes [core.HeroCount]core.Hero
	if len(wire) != core.HeroCount {
		return heroes, decodeErr("heroes", "got %d heroes, want %d", len(wire), core.HeroCount)
	}

	parsed := make([]core.Hero, 0, core.HeroCount)
	for i, w := range wire {
		h, err := w.toHero()
		if err != nil {
			err.Field = fmt.Sprintf("heroes[%d].%s", i, err.Field)
			return heroes, err
		}
		parsed = append(parsed, h)
	}

	slices.SortFunc(parsed, func(a, b core.Hero) int { return a.ID - b.ID })
	copy(heroes[:], parsed)
	return heroes, nil
}

func (w wireHero) toHero() (core.Hero, *DecodeError) {
	switch {
	case w.ID == nil:
		return core.Hero{}, decodeErr("id", "missing")
	case w.Name == nil:
		return core.Hero{}, decodeErr("name", "missing")
	case w.Life == nil:
		return core.Hero{}, decodeErr("life", "missing")
	case w.Gold == nil:
		return core.Hero{}, decodeErr("gold", "missing")
	case w.MineCount == nil:
		return core.Hero{}, decodeErr("mineCount", "missing")
	case w.Crashed == nil:
		return core.Hero{}, decodeErr("crashed", "missing")
	}

	pos, err := w.Pos.flip("pos")
	if err != nil {
		return core.Hero{}, err
	}
	spawn, err := w.SpawnPos.flip("spawnPos")
	if err != nil {
		return core.Hero{}, err
	}

	h := core.Hero{
		ID:        *w.ID,
		Name:      *w.Name,
		Pos:       pos,
		SpawnPos:  spawn,
		Life:      *w.Life,
		Gold:      *w.Gold,
		MineCount: *w.MineCount,
		Crashed:   *w.Crashed,
	}
	if w.UserID != nil {
		h.UserID = *w.UserID
	}
	if w.Elo != nil {
		h.Elo = *w.Elo
	}
	if w.LastDir != nil {
		d := core.Direction(*w.LastDir)
		if !d.Valid() {
			return core.Hero{}, decodeErr("lastDir", "unknown direction %q", *w.LastDir)
		}
		h.LastDir = d
	}
	return h, nil
}

// flip converts the server's (row, column) pair into a board position.
func (p *wirePos) flip(field string) (core.Position, *DecodeError) {
	if p == nil || p.X == nil || p.Y == nil {
		return core.Position{}, decodeErr(field, "missing")
	}
	return core.Position{X: *p.Y, Y: *p.X}, nil
}
