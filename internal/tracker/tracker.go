// Package tracker follows the now-playing feed and runs one worker per game.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vindinium-archive/recorder/internal/parser"
)

// RunFunc ingests one game and returns when its feed ends.
type RunFunc func(ctx context.Context, gameID string) error

// Feed yields now-playing payloads.
type Feed interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// Exit records how a worker ended. Err is nil when its feed ended normally.
type Exit struct {
	GameID   string
	Err      error
	Duration time.Duration
}

// Dependencies holds all dependencies for a Tracker
type Dependencies struct {
	Run      RunFunc
	OpenFeed func(ctx context.Context) (Feed, error)
	Parser   *parser.Parser
	Logger   zerolog.Logger
}

// Tracker starts a worker for every game id the first time it is observed.
// Ids are remembered for the tracker's lifetime, so a game is never ingested
// twice; the registry of running workers only holds games still being read.
type Tracker struct {
	deps    Dependencies
	log     zerolog.Logger
	metrics *instruments

	mu      sync.Mutex
	seen    map[string]struct{}
	running map[string]time.Time
	exits   []Exit
	failed  int

	group errgroup.Group
}

// New creates a Tracker.
func New(deps Dependencies) (*Tracker, error) {
	if deps.Run == nil {
		return nil, errors.New("tracker needs a run function")
	}
	t := &Tracker{
		deps:    deps,
		log:     deps.Logger.With().Str("component", "tracker").Logger(),
		seen:    make(map[string]struct{}),
		running: make(map[string]time.Time),
	}
	m, err := newInstruments(t)
	if err != nil {
		return nil, err
	}
	t.metrics = m
	return t, nil
}

// Observe handles one now-playing snapshot and returns the ids it started
// workers for, in snapshot order.
func (t *Tracker) Observe(ctx context.Context, ids []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var started []string
	for _, id := range ids {
		if _, ok := t.seen[id]; ok {
			continue
		}
		t.seen[id] = struct{}{}
		t.running[id] = time.Now()
		started = append(started, id)

		t.group.Go(func() error {
			t.work(ctx, id)
			return nil
		})
	}

	if len(started) > 0 {
		t.metrics.started.Add(ctx, int64(len(started)))
		t.log.Info().Strs("game_ids", started).Int("active", len(t.running)).Msg("Started workers")
	}
	return started
}

// work runs one game and moves it from the registry to the exit log.
// Worker errors end only that worker.
func (t *Tracker) work(ctx context.Context, id string) {
	err := t.deps.Run(ctx, id)

	t.mu.Lock()
	began := t.running[id]
	delete(t.running, id)
	exit := Exit{GameID: id, Err: err, Duration: time.Since(began)}
	t.exits = append(t.exits, exit)
	if err != nil {
		t.failed++
	}
	t.mu.Unlock()

	t.metrics.exited(ctx, err)
	if err != nil {
		t.log.Warn().Err(err).Str("game_id", id).Dur("duration", exit.Duration).Msg("Worker stopped")
		return
	}
	t.log.Info().Str("game_id", id).Dur("duration", exit.Duration).Msg("Worker finished")
}

// Run consumes the now-playing feed until it ends or ctx is cancelled.
// Payloads that do not decode are skipped.
func (t *Tracker) Run(ctx context.Context) error {
	if t.deps.OpenFeed == nil || t.deps.Parser == nil {
		return errors.New("tracker has no now-playing feed")
	}

	feed, err := t.deps.OpenFeed(ctx)
	if err != nil {
		return fmt.Errorf("open now-playing feed: %w", err)
	}
	defer feed.Close()

	for {
		line, err := feed.Next(ctx)
		if errors.Is(err, io.EOF) {
			t.log.Info().Msg("Now-playing feed ended")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read now-playing feed: %w", err)
		}

		ids, err := t.deps.Parser.ParseNowPlaying(line)
		if err != nil {
			t.log.Warn().Err(err).Msg("Skipping now-playing payload")
			continue
		}
		t.Observe(ctx, ids)
	}
}

// Wait blocks until every started worker has returned.
func (t *Tracker) Wait() {
	_ = t.group.Wait()
}

// Active returns the ids of running workers, sorted.
func (t *Tracker) Active() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.running))
	for id := range t.running {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Started returns how many workers were ever started.
func (t *Tracker) Started() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

// Failed returns how many workers ended with an error.
func (t *Tracker) Failed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// DrainExits returns and clears the exits recorded since the last call.
func (t *Tracker) DrainExits() []Exit {
	t.mu.Lock()
	defer t.mu.Unlock()

	exits := t.exits
	t.exits = nil
	return exits
}

func (t *Tracker) activeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.running)
}
