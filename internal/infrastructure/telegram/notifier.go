package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"CityPulse/internal/domain"
	"CityPulse/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier sends report and conditions messages to a Telegram chat via bot API.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var (
	_ ports.ReportNotifier     = (*Notifier)(nil)
	_ ports.ConditionsNotifier = (*Notifier)(nil)
)

// NewNotifier registers bot token and chat identifier. An empty apiBase uses the public Bot API.
func NewNotifier(apiBase, botToken, chatID string) *Notifier {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Notifier{
		apiBase:  strings.TrimSuffix(apiBase, "/"),
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// NotifyReport announces a newly filed civic report.
func (n *Notifier) NotifyReport(ctx context.Context, report domain.Report) error {
	return n.send(ctx, reportMessage(report))
}

// NotifyConditions posts a short conditions summary.
func (n *Notifier) NotifyConditions(ctx context.Context, at time.Time, snapshot domain.ConditionsSnapshot) error {
	if snapshot.Empty() {
		return nil
	}
	return n.send(ctx, conditionsMessage(at, snapshot))
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func reportMessage(report domain.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New %s report (%s)\n", report.Department, report.Status)
	fmt.Fprintf(&b, "%s\n", report.Description)
	fmt.Fprintf(&b, "Location: %.5f, %.5f\n", report.Location.Lat, report.Location.Lon)
	fmt.Fprintf(&b, "By: %s\n", report.SubmittedBy)
	if strings.HasPrefix(report.ImageURL, "http") {
		fmt.Fprintf(&b, "Photo: %s\n", report.ImageURL)
	}
	fmt.Fprintf(&b, "ID: %s", report.ID)
	return b.String()
}

func conditionsMessage(at time.Time, snapshot domain.ConditionsSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Conditions at %s\n", at.UTC().Format("2006-01-02 15:04 MST"))
	if w := snapshot.Weather; w != nil {
		fmt.Fprintf(&b, "Weather: %s, %.0f°C, wind %.1f m/s\n", w.Description, w.TemperatureCelsius, w.WindSpeedMs)
	}
	for _, title := range snapshot.SignalTitles(5) {
		fmt.Fprintf(&b, "- %s\n", title)
	}
	if extra := len(snapshot.Signals) - 5; extra > 0 {
		fmt.Fprintf(&b, "(+%d more)\n", extra)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
