// Package monitor periodically reports the state of the running workers.
package monitor

import (
	"context"
	"sync"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/vindinium-archive/recorder/internal/influx"
	"github.com/vindinium-archive/recorder/internal/tracker"
)

// Registry is the view of the tracker the monitor reports on.
type Registry interface {
	Active() []string
	Started() int
	Failed() int
	DrainExits() []tracker.Exit
}

// PointWriter receives the status points.
type PointWriter interface {
	WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Registry Registry
	Metrics  PointWriter // optional
	Logger   zerolog.Logger
	Interval time.Duration
}

// Status is one snapshot of the recorder.
type Status struct {
	Time    time.Time
	Active  []string
	Started int
	Failed  int
	Exits   []tracker.Exit
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	log       zerolog.Logger
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Minute
	}
	return &Service{
		deps: deps,
		log:  deps.Logger.With().Str("component", "monitor").Logger(),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetProgramStatus takes a snapshot and consumes the exits recorded since the last one.
func (s *Service) GetProgramStatus() Status {
	return Status{
		Time:    time.Now(),
		Active:  s.deps.Registry.Active(),
		Started: s.deps.Registry.Started(),
		Failed:  s.deps.Registry.Failed(),
		Exits:   s.deps.Registry.DrainExits(),
	}
}

// Report logs a snapshot and writes it as a metric point.
func (s *Service) Report(ctx context.Context) Status {
	st := s.GetProgramStatus()

	failedNow := 0
	for _, e := range st.Exits {
		if e.Err != nil {
			failedNow++
		}
	}
	s.log.Info().
		Int("active", len(st.Active)).
		Int("started", st.Started).
		Int("exited", len(st.Exits)).
		Int("failed", failedNow).
		Msg("Recorder status")
	s.log.Debug().Strs("game_ids", st.Active).Msg("Active games")

	if s.deps.Metrics != nil {
		point := influx.StatusPoint(len(st.Active), st.Started, st.Failed, st.Time)
		if err := s.deps.Metrics.WritePoint(ctx, influx.BucketStatus, point); err != nil {
			s.log.Warn().Err(err).Msg("Failed to write status metrics")
		}
	}
	return st
}

// Start starts the status monitor goroutine
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			close(s.done)
		}()

		s.log.Debug().Dur("interval", s.deps.Interval).Msg("Starting status monitor goroutine")
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Report(ctx)
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to return
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
