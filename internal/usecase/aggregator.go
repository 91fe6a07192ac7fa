package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"CityPulse/internal/domain"
	"CityPulse/internal/ports"
)

// AggregatorDeps wires the live signal adapters. Any of them may be nil.
type AggregatorDeps struct {
	Discussion ports.SignalSource
	News       ports.SignalSource
	Weather    ports.WeatherSource
	// Timeout bounds each adapter call; zero leaves it to the adapter's HTTP client.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Aggregator gathers all live signals concurrently into one ConditionsSnapshot.
type Aggregator struct {
	discussion ports.SignalSource
	news       ports.SignalSource
	weather    ports.WeatherSource
	timeout    time.Duration
	logger     *slog.Logger
}

// NewAggregator constructs the aggregation stage.
func NewAggregator(deps AggregatorDeps) *Aggregator {
	return &Aggregator{
		discussion: deps.Discussion,
		news:       deps.News,
		weather:    deps.Weather,
		timeout:    deps.Timeout,
		logger:     orDiscard(deps.Logger),
	}
}

// Aggregate runs every configured adapter in parallel and waits for all of them.
// Discussion signals come first, then news, each in the order its source returned.
func (a *Aggregator) Aggregate(ctx context.Context) domain.ConditionsSnapshot {
	var (
		discussion []domain.TrafficSignal
		news       []domain.TrafficSignal
		weather    *domain.WeatherSnapshot
	)

	// Adapters absorb their own failures, so no branch returns an error.
	g, gctx := errgroup.WithContext(ctx)

	if a.discussion != nil {
		g.Go(func() error {
			fctx, cancel := a.bound(gctx)
			defer cancel()
			discussion = a.discussion.FetchSignals(fctx)
			return nil
		})
	}
	if a.news != nil {
		g.Go(func() error {
			fctx, cancel := a.bound(gctx)
			defer cancel()
			news = a.news.FetchSignals(fctx)
			return nil
		})
	}
	if a.weather != nil {
		g.Go(func() error {
			fctx, cancel := a.bound(gctx)
			defer cancel()
			weather = a.weather.CurrentWeather(fctx)
			return nil
		})
	}

	_ = g.Wait()

	signals := make([]domain.TrafficSignal, 0, len(discussion)+len(news))
	signals = append(signals, discussion...)
	signals = append(signals, news...)

	a.logger.Debug("conditions aggregated",
		"discussion", len(discussion),
		"news", len(news),
		"weather", weather != nil)

	return domain.ConditionsSnapshot{Signals: signals, Weather: weather}
}

func (a *Aggregator) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}
