package usecase

import (
	"context"
	"log/slog"
	"time"

	"CityPulse/internal/ports"
)

// Watcher wires the scheduler driver with periodic condition aggregation.
type Watcher struct {
	driver     ports.Scheduler
	aggregator *Aggregator
	notifiers  []ports.ConditionsNotifier
	logger     *slog.Logger
}

// NewWatcher returns a helper to start/stop the conditions watch.
func NewWatcher(driver ports.Scheduler, aggregator *Aggregator, logger *slog.Logger, notifiers ...ports.ConditionsNotifier) *Watcher {
	w := &Watcher{driver: driver, aggregator: aggregator, logger: orDiscard(logger)}
	for _, n := range notifiers {
		if n != nil {
			w.notifiers = append(w.notifiers, n)
		}
	}
	return w
}

// Start registers the aggregation job with the scheduler.
func (w *Watcher) Start(ctx context.Context) error {
	if w.driver == nil || w.aggregator == nil {
		return nil
	}

	job := func(trigger time.Time) {
		w.RunOnce(ctx, trigger)
	}

	return w.driver.Start(ctx, job)
}

// RunOnce aggregates one snapshot and hands it to every notifier.
func (w *Watcher) RunOnce(ctx context.Context, at time.Time) {
	snapshot := w.aggregator.Aggregate(ctx)

	attrs := []any{"at", at.UTC().Format(time.RFC3339), "signals", len(snapshot.Signals)}
	if snapshot.Weather != nil {
		attrs = append(attrs, "weather", describeWeather(snapshot.Weather))
	}
	if len(snapshot.Signals) > 0 {
		attrs = append(attrs, "traffic", trafficLevel(snapshot.Signals))
	}
	w.logger.Info("conditions snapshot", attrs...)

	for _, n := range w.notifiers {
		if err := n.NotifyConditions(ctx, at, snapshot); err != nil {
			w.logger.Warn("conditions notification failed", "err", err)
		}
	}
}

// Stop gracefully tears down the underlying scheduler.
func (w *Watcher) Stop(ctx context.Context) error {
	if w.driver == nil {
		return nil
	}

	return w.driver.Stop(ctx)
}
