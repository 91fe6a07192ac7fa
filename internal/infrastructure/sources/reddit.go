package sources

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"CityPulse/internal/config"
	"CityPulse/internal/domain"
	"CityPulse/internal/ports"
)

// Reddit searches one subreddit for recent traffic discussion.
type Reddit struct {
	cfg    config.RedditConfig
	client *http.Client
	logger *slog.Logger
}

var _ ports.SignalSource = (*Reddit)(nil)

// NewReddit wires an HTTP client; nil gets a client with a 20s timeout.
func NewReddit(cfg config.RedditConfig, client *http.Client, logger *slog.Logger) *Reddit {
	return &Reddit{cfg: cfg, client: defaultClient(client), logger: orDiscard(logger)}
}

// Name identifies the adapter in logs.
func (r *Reddit) Name() string {
	return domain.SourceReddit
}

type redditListing struct {
	Data *struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				Permalink  string  `json:"permalink"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchSignals returns the newest matching posts, or nothing when the search fails.
func (r *Reddit) FetchSignals(ctx context.Context) []domain.TrafficSignal {
	if !r.cfg.Enabled || r.cfg.Subreddit == "" {
		return []domain.TrafficSignal{}
	}

	searchURL, err := r.searchURL()
	if err != nil {
		logFailure(r.logger, r.Name(), err)
		return []domain.TrafficSignal{}
	}

	var listing redditListing
	if err := getJSON(ctx, r.client, searchURL, r.cfg.UserAgent, &listing); err != nil {
		logFailure(r.logger, r.Name(), err)
		return []domain.TrafficSignal{}
	}
	if listing.Data == nil {
		r.logger.Warn("unexpected response shape", "source", r.Name())
		return []domain.TrafficSignal{}
	}

	base := strings.TrimSuffix(r.cfg.BaseURL, "/")
	signals := make([]domain.TrafficSignal, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		title := cleanTitle(post.Title)
		if title == "" {
			continue
		}
		signal := domain.TrafficSignal{
			ID:        post.ID,
			Title:     title,
			SourceURL: base + post.Permalink,
			Source:    domain.SourceReddit,
		}
		if post.CreatedUTC > 0 {
			signal.PublishedAt = time.Unix(int64(post.CreatedUTC), 0).UTC()
		}
		signals = append(signals, signal)
	}

	r.logger.Debug("source fetched", "source", r.Name(), "count", len(signals))
	return signals
}

func (r *Reddit) searchURL() (string, error) {
	parsed, err := url.Parse(strings.TrimSuffix(r.cfg.BaseURL, "/") + "/r/" + url.PathEscape(r.cfg.Subreddit) + "/search.json")
	if err != nil {
		return "", err
	}

	limit := r.cfg.Limit
	if limit <= 0 {
		limit = 25
	}

	query := parsed.Query()
	query.Set("q", strings.Join(r.cfg.Keywords, " OR "))
	query.Set("sort", "new")
	query.Set("restrict_sr", "on")
	query.Set("limit", strconv.Itoa(limit))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
