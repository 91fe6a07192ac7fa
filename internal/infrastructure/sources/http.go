// Package sources holds the live signal adapters. Every adapter fails soft:
// transport errors, bad statuses and malformed payloads become empty results.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultUserAgent = "CityPulse/1.0"
	maxBodyBytes     = 4 << 20
)

// statusError carries a non-success upstream status.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream returned %s", e.status)
}

func defaultClient(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: 20 * time.Second}
	}
	return client
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// getJSON performs a GET and decodes a JSON body into out.
func getJSON(ctx context.Context, client *http.Client, rawURL, userAgent string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &statusError{code: resp.StatusCode, status: resp.Status}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// logFailure records a soft failure with a hint for the well-known statuses.
func logFailure(logger *slog.Logger, source string, err error) {
	if se, ok := err.(*statusError); ok {
		switch se.code {
		case http.StatusTooManyRequests:
			logger.Warn("source rate limited", "source", source, "status", se.code)
			return
		case http.StatusUnauthorized, http.StatusForbidden:
			logger.Warn("source rejected credentials", "source", source, "status", se.code)
			return
		}
	}
	logger.Warn("source unavailable", "source", source, "err", err)
}

// cleanTitle strips markup and entities that feeds leave in titles and collapses whitespace.
func cleanTitle(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.Join(strings.Fields(raw), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
