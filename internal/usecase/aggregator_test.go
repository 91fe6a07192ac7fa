package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jaswdr/faker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CityPulse/internal/domain"
)

func signals(source string, titles ...string) []domain.TrafficSignal {
	out := make([]domain.TrafficSignal, 0, len(titles))
	for i, title := range titles {
		out = append(out, domain.TrafficSignal{
			ID:     fmt.Sprintf("%s-%d", source, i),
			Title:  title,
			Source: source,
		})
	}
	return out
}

func TestAggregateMergesDiscussionThenNews(t *testing.T) {
	t.Parallel()

	weather := &domain.WeatherSnapshot{TemperatureCelsius: 27, Description: "haze", WindSpeedMs: 2.1}
	agg := NewAggregator(AggregatorDeps{
		Discussion: &fakeSource{name: "reddit", signals: signals(domain.SourceReddit, "r1", "r2")},
		News:       &fakeSource{name: "news", signals: signals(domain.SourceNews, "n1")},
		Weather:    &fakeWeather{snapshot: weather},
	})

	snap := agg.Aggregate(context.Background())

	titles := snap.SignalTitles(0)
	assert.Equal(t, []string{"r1", "r2", "n1"}, titles)
	assert.Same(t, weather, snap.Weather)
}

func TestAggregateIsIndependentOfCompletionOrder(t *testing.T) {
	t.Parallel()

	build := func(discussionDelay, newsDelay, weatherDelay time.Duration) *Aggregator {
		return NewAggregator(AggregatorDeps{
			Discussion: &fakeSource{signals: signals(domain.SourceReddit, "a", "b"), delay: discussionDelay},
			News:       &fakeSource{signals: signals(domain.SourceNews, "c", "d", "e"), delay: newsDelay},
			Weather:    &fakeWeather{snapshot: &domain.WeatherSnapshot{Description: "rain"}, delay: weatherDelay},
		})
	}

	first := build(30*time.Millisecond, 0, 15*time.Millisecond).Aggregate(context.Background())
	second := build(0, 30*time.Millisecond, 0).Aggregate(context.Background())
	third := build(15*time.Millisecond, 15*time.Millisecond, 30*time.Millisecond).Aggregate(context.Background())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("snapshots differ (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first, third); diff != "" {
		t.Fatalf("snapshots differ (-first +third):\n%s", diff)
	}
}

func TestAggregateCountsAndOrder(t *testing.T) {
	t.Parallel()

	fake := faker.New()
	n1 := fake.IntBetween(1, 20)
	n2 := fake.IntBetween(1, 20)

	discussionTitles := make([]string, n1)
	for i := range discussionTitles {
		discussionTitles[i] = fake.Lorem().Sentence(6)
	}
	newsTitles := make([]string, n2)
	for i := range newsTitles {
		newsTitles[i] = fake.Lorem().Sentence(8)
	}

	agg := NewAggregator(AggregatorDeps{
		Discussion: &fakeSource{signals: signals(domain.SourceReddit, discussionTitles...), delay: 5 * time.Millisecond},
		News:       &fakeSource{signals: signals(domain.SourceNews, newsTitles...)},
	})

	snap := agg.Aggregate(context.Background())
	require.Len(t, snap.Signals, n1+n2)
	assert.Equal(t, discussionTitles, snap.SignalTitles(0)[:n1])
	assert.Equal(t, newsTitles, snap.SignalTitles(0)[n1:])
	assert.Nil(t, snap.Weather)
}

func TestAggregateWithoutAdapters(t *testing.T) {
	t.Parallel()

	snap := NewAggregator(AggregatorDeps{}).Aggregate(context.Background())
	assert.NotNil(t, snap.Signals)
	assert.True(t, snap.Empty())
}

func TestAggregateBoundsSlowAdapters(t *testing.T) {
	t.Parallel()

	slow := &fakeSource{signals: signals(domain.SourceNews, "late"), delay: time.Second}
	agg := NewAggregator(AggregatorDeps{
		Discussion: &fakeSource{signals: signals(domain.SourceReddit, "fast")},
		News:       slow,
		Weather:    &fakeWeather{snapshot: &domain.WeatherSnapshot{}, delay: time.Second},
		Timeout:    20 * time.Millisecond,
	})

	start := time.Now()
	snap := agg.Aggregate(context.Background())

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, []string{"fast"}, snap.SignalTitles(0))
	assert.Nil(t, snap.Weather)
	assert.EqualValues(t, 1, slow.calls.Load())
}
