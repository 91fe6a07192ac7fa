package domain

import "time"

// Signal source labels.
const (
	SourceReddit = "reddit"
	SourceNews   = "news"
)

// TrafficSignal is a single discussion post or news item about city traffic.
type TrafficSignal struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	SourceURL   string    `json:"sourceUrl"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      string    `json:"source"`
}

// WeatherSnapshot is one current weather reading for the configured city.
type WeatherSnapshot struct {
	TemperatureCelsius float64 `json:"temperatureCelsius"`
	Description        string  `json:"description"`
	WindSpeedMs        float64 `json:"windSpeedMs"`
	IconCode           string  `json:"iconCode"`
}

// ConditionsSnapshot is the merged view of all live signals for one aggregation cycle.
// Signals may be empty and Weather may be nil; the snapshot itself is always usable.
type ConditionsSnapshot struct {
	Signals []TrafficSignal  `json:"signals"`
	Weather *WeatherSnapshot `json:"weather"`
}

// Empty reports whether no live data was gathered at all.
func (c ConditionsSnapshot) Empty() bool {
	return len(c.Signals) == 0 && c.Weather == nil
}

// SignalTitles returns up to limit titles in snapshot order; limit <= 0 means all.
func (c ConditionsSnapshot) SignalTitles(limit int) []string {
	n := len(c.Signals)
	if limit > 0 && limit < n {
		n = limit
	}
	titles := make([]string, 0, n)
	for _, s := range c.Signals[:n] {
		titles = append(titles, s.Title)
	}
	return titles
}
