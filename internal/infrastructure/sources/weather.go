package sources

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"CityPulse/internal/config"
	"CityPulse/internal/domain"
	"CityPulse/internal/ports"
)

const weatherSourceName = "weather"

// Weather reads current conditions from OpenWeatherMap for one coordinate.
type Weather struct {
	cfg    config.WeatherConfig
	city   config.CityConfig
	client *http.Client
	logger *slog.Logger
}

var _ ports.WeatherSource = (*Weather)(nil)

// NewWeather wires an HTTP client; nil gets a client with a 20s timeout.
func NewWeather(cfg config.WeatherConfig, city config.CityConfig, client *http.Client, logger *slog.Logger) *Weather {
	return &Weather{cfg: cfg, city: city, client: defaultClient(client), logger: orDiscard(logger)}
}

type weatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main *struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// CurrentWeather returns nil without an API key or on any failure.
func (w *Weather) CurrentWeather(ctx context.Context) *domain.WeatherSnapshot {
	if w.cfg.APIKey == "" {
		w.logger.Warn("api key not configured, skipping", "source", weatherSourceName)
		return nil
	}

	lookupURL, err := w.lookupURL()
	if err != nil {
		logFailure(w.logger, weatherSourceName, err)
		return nil
	}

	var payload weatherResponse
	if err := getJSON(ctx, w.client, lookupURL, "", &payload); err != nil {
		logFailure(w.logger, weatherSourceName, err)
		return nil
	}
	if len(payload.Weather) == 0 || payload.Main == nil {
		w.logger.Warn("unexpected response shape", "source", weatherSourceName)
		return nil
	}

	snapshot := &domain.WeatherSnapshot{
		TemperatureCelsius: math.Round(payload.Main.Temp),
		Description:        payload.Weather[0].Description,
		WindSpeedMs:        payload.Wind.Speed,
		IconCode:           payload.Weather[0].Icon,
	}
	w.logger.Debug("source fetched", "source", weatherSourceName, "description", snapshot.Description)
	return snapshot
}

func (w *Weather) lookupURL() (string, error) {
	parsed, err := url.Parse(w.cfg.Endpoint)
	if err != nil {
		return "", err
	}

	query := parsed.Query()
	query.Set("lat", strconv.FormatFloat(w.city.Lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(w.city.Lon, 'f', -1, 64))
	query.Set("appid", w.cfg.APIKey)
	query.Set("units", "metric")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
