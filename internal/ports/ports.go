package ports

import (
	"context"
	"time"

	"CityPulse/internal/domain"
	"CityPulse/internal/generation"
)

// SignalSource pulls traffic signals from one upstream provider.
// Implementations never fail: any problem yields an empty slice.
type SignalSource interface {
	Name() string
	FetchSignals(ctx context.Context) []domain.TrafficSignal
}

// WeatherSource reads current weather; nil means unavailable.
type WeatherSource interface {
	CurrentWeather(ctx context.Context) *domain.WeatherSnapshot
}

// Generator produces JSON conforming to req.Schema from a prompt (and optional media).
type Generator interface {
	Generate(ctx context.Context, req generation.Request) ([]byte, error)
}

// ReportRepository persists civic reports (append-only) and lists a submitter's history.
type ReportRepository interface {
	SaveReport(ctx context.Context, report domain.Report) error
	ReportsBySubmitter(ctx context.Context, submittedBy string, limit int) ([]domain.Report, error)
}

// ImageStore uploads report photos and returns a URL for them.
type ImageStore interface {
	PutImage(ctx context.Context, key string, img domain.Image) (string, error)
	DeleteImage(ctx context.Context, key string) error
}

// ReportNotifier announces newly filed reports (Telegram, Kafka, etc.).
type ReportNotifier interface {
	NotifyReport(ctx context.Context, report domain.Report) error
}

// ConditionsNotifier publishes periodic conditions snapshots.
type ConditionsNotifier interface {
	NotifyConditions(ctx context.Context, at time.Time, snapshot domain.ConditionsSnapshot) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
