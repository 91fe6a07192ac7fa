package sources

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"CityPulse/internal/config"
	"CityPulse/internal/domain"
	"CityPulse/internal/ports"
)

const newsDateLayout = "2006-01-02 15:04:05"

// News searches NewsData.io for traffic headlines.
type News struct {
	cfg    config.NewsConfig
	client *http.Client
	logger *slog.Logger
}

var _ ports.SignalSource = (*News)(nil)

// NewNews wires an HTTP client; nil gets a client with a 20s timeout.
func NewNews(cfg config.NewsConfig, client *http.Client, logger *slog.Logger) *News {
	return &News{cfg: cfg, client: defaultClient(client), logger: orDiscard(logger)}
}

// Name identifies the adapter in logs.
func (n *News) Name() string {
	return domain.SourceNews
}

type newsResponse struct {
	Status  string `json:"status"`
	Results []struct {
		ArticleID string `json:"article_id"`
		Title     string `json:"title"`
		Link      string `json:"link"`
		PubDate   string `json:"pubDate"`
	} `json:"results"`
}

// FetchSignals returns matching articles, or nothing without an API key or on any failure.
func (n *News) FetchSignals(ctx context.Context) []domain.TrafficSignal {
	if n.cfg.APIKey == "" {
		n.logger.Warn("api key not configured, skipping", "source", n.Name())
		return []domain.TrafficSignal{}
	}

	searchURL, err := n.searchURL()
	if err != nil {
		logFailure(n.logger, n.Name(), err)
		return []domain.TrafficSignal{}
	}

	var payload newsResponse
	if err := getJSON(ctx, n.client, searchURL, "", &payload); err != nil {
		logFailure(n.logger, n.Name(), err)
		return []domain.TrafficSignal{}
	}
	if payload.Status != "success" {
		n.logger.Warn("non-success response", "source", n.Name(), "status", payload.Status)
		return []domain.TrafficSignal{}
	}

	signals := make([]domain.TrafficSignal, 0, len(payload.Results))
	for _, article := range payload.Results {
		title := cleanTitle(article.Title)
		if title == "" {
			continue
		}
		id := article.ArticleID
		if id == "" {
			id = article.Link
		}
		var published time.Time
		if t, err := time.ParseInLocation(newsDateLayout, article.PubDate, time.UTC); err == nil {
			published = t
		}
		signals = append(signals, domain.TrafficSignal{
			ID:          id,
			Title:       title,
			SourceURL:   article.Link,
			PublishedAt: published,
			Source:      domain.SourceNews,
		})
	}

	n.logger.Debug("source fetched", "source", n.Name(), "count", len(signals))
	return signals
}

func (n *News) searchURL() (string, error) {
	parsed, err := url.Parse(n.cfg.Endpoint)
	if err != nil {
		return "", err
	}

	query := parsed.Query()
	query.Set("apikey", n.cfg.APIKey)
	query.Set("q", n.cfg.Query)
	if n.cfg.Language != "" {
		query.Set("language", n.cfg.Language)
	}
	if n.cfg.Country != "" {
		query.Set("country", n.cfg.Country)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
