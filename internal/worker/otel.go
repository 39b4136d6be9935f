package worker

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/vindinium-archive/recorder/internal/worker"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type instruments struct {
	turns    metric.Int64Counter
	deaths   metric.Int64Counter
	failures metric.Int64Counter
}

func newInstruments() (*instruments, error) {
	m := meter()
	var i instruments
	var err error

	i.turns, err = m.Int64Counter(
		"arena.worker.turns",
		metric.WithDescription("Total turns persisted"),
	)
	if err != nil {
		return nil, err
	}

	i.deaths, err = m.Int64Counter(
		"arena.worker.deaths",
		metric.WithDescription("Total freshly dead heroes detected"),
	)
	if err != nil {
		return nil, err
	}

	i.failures, err = m.Int64Counter(
		"arena.worker.failures",
		metric.WithDescription("Total ingestions ended by an error"),
	)
	if err != nil {
		return nil, err
	}

	return &i, nil
}
