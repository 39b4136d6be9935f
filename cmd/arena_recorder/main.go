package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vindinium-archive/recorder/internal/api"
	"github.com/vindinium-archive/recorder/internal/config"
	"github.com/vindinium-archive/recorder/internal/influx"
	"github.com/vindinium-archive/recorder/internal/logging"
	"github.com/vindinium-archive/recorder/internal/monitor"
	"github.com/vindinium-archive/recorder/internal/parser"
	"github.com/vindinium-archive/recorder/internal/storage"
	"github.com/vindinium-archive/recorder/internal/tracker"
	"github.com/vindinium-archive/recorder/internal/worker"
)

// ProgramName names the log files.
const ProgramName = "arena_recorder"

func main() {
	os.Exit(run(os.Args[1:]))
}

func configDir() string {
	if dir := os.Getenv("ARENA_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "."
}

func run(argv []string) int {
	args, err := ParseArgs(argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, Usage(ProgramName))
		return 2
	}

	if err := config.Load(configDir()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	args.Apply()

	logOpts := logging.Options{
		Level:       config.GetString("logLevel"),
		LogsDir:     config.GetString("logsDir"),
		ProgramName: ProgramName,
		Start:       time.Now(),
	}
	if config.GetBool("graylog.enabled") {
		logOpts.GraylogAddress = config.GetString("graylog.address")
	}
	logs, err := logging.Setup(logOpts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logs.Close()
	log := logs.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := record(ctx, log); err != nil {
		log.Error().Err(err).Msg("Recorder stopped")
		return 1
	}
	log.Info().Msg("Recorder stopped")
	return 0
}

// record wires the components and follows the now-playing feed until it ends
// or ctx is cancelled, then waits for the running games.
func record(ctx context.Context, log zerolog.Logger) error {
	backend, err := storage.NewBackend(config.GetStorageConfig(), log)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return err
	}
	defer backend.Close()

	var metrics *influx.Manager
	m := influx.NewManager(log, config.GetString("influx.backupPath"))
	switch err := m.Connect(ctx); {
	case errors.Is(err, influx.ErrDisabled):
		log.Debug().Msg("InfluxDB disabled")
	case err != nil:
		log.Warn().Err(err).Msg("InfluxDB unavailable, metrics disabled")
	default:
		metrics = m
		defer m.Close()
	}

	feed := config.GetFeedConfig()
	client := api.New(feed.Host, feed.ConnectTimeout)
	p := parser.NewParser(log)

	wdeps := worker.Dependencies{
		OpenStream: func(ctx context.Context, gameID string) (worker.Stream, error) {
			r, err := client.Events(ctx, gameID)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		Parser:  p,
		Storage: backend,
		Deaths:  config.GetDeathThresholds(),
		Logger:  log,
	}
	if metrics != nil {
		wdeps.Metrics = metrics
	}
	w, err := worker.New(wdeps)
	if err != nil {
		return err
	}

	tr, err := tracker.New(tracker.Dependencies{
		Run: w.Run,
		OpenFeed: func(ctx context.Context) (tracker.Feed, error) {
			r, err := client.NowPlaying(ctx)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		Parser: p,
		Logger: log,
	})
	if err != nil {
		return err
	}

	mdeps := monitor.Dependencies{
		Registry: tr,
		Logger:   log,
		Interval: config.GetMonitorConfig().Interval,
	}
	if metrics != nil {
		mdeps.Metrics = metrics
	}
	mon := monitor.NewService(mdeps)
	if err := mon.Start(ctx); err != nil {
		return err
	}
	defer mon.Stop()

	log.Info().Str("host", client.BaseURL()).Msg("Following now-playing feed")
	runErr := tr.Run(ctx)
	if runErr != nil && ctx.Err() == nil {
		log.Error().Err(runErr).Msg("Now-playing feed failed")
	}

	log.Info().Strs("game_ids", tr.Active()).Msg("Waiting for running games")
	tr.Wait()
	mon.Report(context.Background())

	if ctx.Err() != nil {
		return nil
	}
	return runErr
}
