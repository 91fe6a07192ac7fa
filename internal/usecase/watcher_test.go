package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CityPulse/internal/domain"
)

// immediateScheduler runs the job once on Start.
type immediateScheduler struct {
	at      time.Time
	started bool
	stopped bool
}

func (s *immediateScheduler) Start(_ context.Context, job func(time.Time)) error {
	s.started = true
	job(s.at)
	return nil
}

func (s *immediateScheduler) Stop(context.Context) error {
	s.stopped = true
	return nil
}

func TestWatcherPublishesSnapshots(t *testing.T) {
	t.Parallel()

	driver := &immediateScheduler{at: fixedNow}
	agg := NewAggregator(AggregatorDeps{
		Discussion: &fakeSource{signals: signals(domain.SourceReddit, "Jam at Hebbal")},
		Weather:    &fakeWeather{snapshot: &domain.WeatherSnapshot{Description: "mist"}},
	})
	failing := &recordingNotifier{err: errors.New("broker down")}
	ok := &recordingNotifier{}

	w := NewWatcher(driver, agg, nil, failing, nil, ok)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop(context.Background()))

	assert.True(t, driver.started)
	assert.True(t, driver.stopped)
	require.Len(t, ok.snapshots, 1)
	assert.Equal(t, []string{"Jam at Hebbal"}, ok.snapshots[0].SignalTitles(0))
	assert.Len(t, failing.snapshots, 1)
}

func TestWatcherWithoutDriver(t *testing.T) {
	t.Parallel()

	w := NewWatcher(nil, nil, nil)
	assert.NoError(t, w.Start(context.Background()))
	assert.NoError(t, w.Stop(context.Background()))
}
