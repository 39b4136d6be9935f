// Package worker ingests the event feed of a single game.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/vindinium-archive/recorder/internal/influx"
	"github.com/vindinium-archive/recorder/internal/parser"
	"github.com/vindinium-archive/recorder/internal/storage"
	"github.com/vindinium-archive/recorder/pkg/core"
)

// Stream yields the raw payloads of one game's event feed.
type Stream interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// StreamOpener opens the event feed of a game.
type StreamOpener func(ctx context.Context, gameID string) (Stream, error)

// PointWriter receives metric points. influx.Manager implements it.
type PointWriter interface {
	WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error
}

// PersistenceError is a storage failure while ingesting a game. Turns committed
// before it stay durable.
type PersistenceError struct {
	GameID string
	Turn   int
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist game %s turn %d: %v", e.GameID, e.Turn, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Dependencies holds all dependencies for a Worker
type Dependencies struct {
	OpenStream StreamOpener
	Parser     *parser.Parser
	Storage    storage.Backend
	Deaths     core.DeathThresholds
	Metrics    PointWriter // optional
	Logger     zerolog.Logger
	Now        func() time.Time
}

// Worker decodes a game's turns and persists them one transaction per turn.
// A single Worker may run many games concurrently; each Run owns its own state.
type Worker struct {
	deps    Dependencies
	log     zerolog.Logger
	metrics *instruments
}

// New creates a Worker.
func New(deps Dependencies) (*Worker, error) {
	if deps.OpenStream == nil || deps.Parser == nil || deps.Storage == nil {
		return nil, errors.New("worker needs a stream opener, a parser and a storage backend")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m, err := newInstruments()
	if err != nil {
		return nil, err
	}
	return &Worker{
		deps:    deps,
		log:     deps.Logger.With().Str("component", "worker").Logger(),
		metrics: m,
	}, nil
}

// Run ingests gameID until its feed ends, ctx is cancelled or a turn fails.
// End of feed is not an error.
func (w *Worker) Run(ctx context.Context, gameID string) error {
	log := w.log.With().Str("game_id", gameID).Str("run_id", uuid.NewString()).Logger()

	stream, err := w.deps.OpenStream(ctx, gameID)
	if err != nil {
		return fmt.Errorf("open events of %s: %w", gameID, err)
	}
	defer stream.Close()
	defer w.deps.Storage.EndGame(gameID)

	log.Info().Msg("Ingesting game")

	var prev *core.GameState
	turns := 0
	for {
		line, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return w.fail(ctx, log, fmt.Errorf("read events of %s: %w", gameID, err))
		}

		state, err := w.deps.Parser.ParseTurn(line)
		if err != nil {
			return w.fail(ctx, log, fmt.Errorf("decode turn of %s: %w", gameID, err))
		}
		if state.ID != gameID {
			return w.fail(ctx, log, fmt.Errorf("feed of %s carried game %s", gameID, state.ID))
		}

		rec := core.TurnRecord{State: state}
		if prev == nil {
			if err := w.deps.Storage.StartGame(ctx, state); err != nil {
				return w.fail(ctx, log, &PersistenceError{GameID: gameID, Turn: state.Turn, Err: err})
			}
		} else {
			rec.Died, err = w.deps.Deaths.FreshlyDead(prev, state)
			if err != nil {
				return w.fail(ctx, log, fmt.Errorf("game %s turn %d: %w", gameID, state.Turn, err))
			}
		}

		if _, err := w.deps.Storage.RecordTurn(ctx, rec); err != nil {
			return w.fail(ctx, log, &PersistenceError{GameID: gameID, Turn: state.Turn, Err: err})
		}
		w.observe(ctx, log, rec)

		prev = state
		turns++
	}

	finished := prev != nil && prev.Finished
	log.Info().Int("turns", turns).Bool("finished", finished).Msg("Event feed ended")
	return nil
}

// observe publishes the metrics of a committed turn.
func (w *Worker) observe(ctx context.Context, log zerolog.Logger, rec core.TurnRecord) {
	deaths := 0
	for _, d := range rec.Died {
		if d {
			deaths++
		}
	}
	w.metrics.turns.Add(ctx, 1)
	if deaths > 0 {
		w.metrics.deaths.Add(ctx, int64(deaths))
		log.Debug().Int("turn", rec.State.Turn).Int("deaths", deaths).Msg("Heroes died")
	}

	if w.deps.Metrics == nil {
		return
	}
	point := influx.TurnPoint(rec.State, rec.Died, w.deps.Now())
	if err := w.deps.Metrics.WritePoint(ctx, influx.BucketTurns, point); err != nil {
		log.Warn().Err(err).Msg("Failed to write turn metrics")
	}
}

func (w *Worker) fail(ctx context.Context, log zerolog.Logger, err error) error {
	if ctx.Err() != nil {
		log.Info().Err(err).Msg("Ingestion cancelled")
		return err
	}
	w.metrics.failures.Add(ctx, 1)
	log.Error().Err(err).Msg("Ingestion failed")
	return err
}
