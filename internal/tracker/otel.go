package tracker

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/vindinium-archive/recorder/internal/tracker"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type instruments struct {
	started metric.Int64Counter
	exits   metric.Int64Counter
	active  metric.Int64ObservableGauge
}

func newInstruments(t *Tracker) (*instruments, error) {
	m := meter()
	var i instruments
	var err error

	i.started, err = m.Int64Counter(
		"arena.tracker.started",
		metric.WithDescription("Total workers started"),
	)
	if err != nil {
		return nil, err
	}

	i.exits, err = m.Int64Counter(
		"arena.tracker.exits",
		metric.WithDescription("Total workers returned, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	i.active, err = m.Int64ObservableGauge(
		"arena.tracker.active",
		metric.WithDescription("Workers currently running"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(t.activeCount()))
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return &i, nil
}

func (i *instruments) exited(ctx context.Context, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	i.exits.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
