// Command arena_chaincheck reports history chains with more than one head and
// games that were never marked finished.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/vindinium-archive/recorder/internal/config"
	"github.com/vindinium-archive/recorder/internal/logging"
	"github.com/vindinium-archive/recorder/internal/storage"
	gormstorage "github.com/vindinium-archive/recorder/internal/storage/gorm"
)

const ProgramName = "arena_chaincheck"

// Checker runs the integrity queries. The GORM based backends implement it.
type Checker interface {
	MultiHeadChains(ctx context.Context) ([]gormstorage.ChainAnomaly, error)
	UnfinishedGames(ctx context.Context) ([]string, error)
}

var errAnomalies = errors.New("chain anomalies found")

func main() {
	os.Exit(run())
}

func run() int {
	dir := "."
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := config.Load(dir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logs, err := logging.Setup(logging.Options{
		Level:       config.GetString("logLevel"),
		ProgramName: ProgramName,
		Start:       time.Now(),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logs.Close()

	if err := check(context.Background(), logs.Logger, os.Stdout); err != nil {
		if !errors.Is(err, errAnomalies) {
			logs.Logger.Error().Err(err).Msg("Chain check failed")
		}
		return 1
	}
	return 0
}

func check(ctx context.Context, log zerolog.Logger, out io.Writer) error {
	backend, err := storage.NewBackend(config.GetStorageConfig(), log)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return err
	}
	defer backend.Close()

	checker, ok := backend.(Checker)
	if !ok {
		return fmt.Errorf("storage backend %T cannot run integrity checks", backend)
	}
	return report(ctx, checker, out)
}

// report prints every anomaly and returns errAnomalies when a chain has more
// than one head. Unfinished games are listed but do not fail the check.
func report(ctx context.Context, c Checker, out io.Writer) error {
	chains, err := c.MultiHeadChains(ctx)
	if err != nil {
		return fmt.Errorf("multi-head chains: %w", err)
	}
	games, err := c.UnfinishedGames(ctx)
	if err != nil {
		return fmt.Errorf("unfinished games: %w", err)
	}

	for _, a := range chains {
		fmt.Fprintf(out, "%s\t%s\t%d heads\n", a.Chain, a.LogicalID, a.Heads)
	}
	for _, id := range games {
		fmt.Fprintf(out, "unfinished\t%s\n", id)
	}
	fmt.Fprintf(out, "%d multi-head chains, %d unfinished games\n", len(chains), len(games))

	if len(chains) > 0 {
		return errAnomalies
	}
	return nil
}
