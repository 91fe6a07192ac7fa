package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"CityPulse/internal/domain"
	"CityPulse/internal/generation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type fakeSource struct {
	name    string
	signals []domain.TrafficSignal
	delay   time.Duration
	calls   atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchSignals(ctx context.Context) []domain.TrafficSignal {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil
		}
	}
	return f.signals
}

type fakeWeather struct {
	snapshot *domain.WeatherSnapshot
	delay    time.Duration
	calls    atomic.Int32
}

func (f *fakeWeather) CurrentWeather(ctx context.Context) *domain.WeatherSnapshot {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil
		}
	}
	return f.snapshot
}

// fakeGenerator answers by request name.
type fakeGenerator struct {
	responses map[string]string
	errs      map[string]error
	// block makes the named request wait for context cancellation.
	block map[string]bool

	calls    atomic.Int32
	mu       sync.Mutex
	requests map[string]generation.Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req generation.Request) ([]byte, error) {
	f.calls.Add(1)
	f.mu.Lock()
	if f.requests == nil {
		f.requests = map[string]generation.Request{}
	}
	f.requests[req.Name] = req
	f.mu.Unlock()

	if f.block[req.Name] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := f.errs[req.Name]; err != nil {
		return nil, err
	}
	resp, ok := f.responses[req.Name]
	if !ok {
		return nil, fmt.Errorf("no canned response for %s", req.Name)
	}
	return []byte(resp), nil
}

func (f *fakeGenerator) request(name string) (generation.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[name]
	return req, ok
}

var errBackend = errors.New("backend unavailable")

const routeJSON = `{
  "trafficAnalysis": "Moderate traffic on Inner Ring Road.",
  "weatherImpact": "Light rain may slow traffic near underpasses.",
  "recommendation": {
    "primary": "Take Inner Ring Road via Domlur.",
    "alternative": "Use the metro from Trinity.",
    "avoid": "Sony World Junction"
  },
  "bestDepartureTime": "Leave before 8:30 AM.",
  "prediction": "Congestion will build after 9 AM."
}`

const alertsJSON = `{
  "alerts": [
    {
      "type": "congestion",
      "location": "Sony World Junction",
      "description": "Slow-moving traffic due to ongoing work.",
      "relevance": 1.4,
      "confidence": 0.7,
      "recommendedAction": "Use 80 Feet Road."
    }
  ]
}`

type memoryRepository struct {
	mu      sync.Mutex
	reports []domain.Report
	err     error
	limit   int
}

func (m *memoryRepository) SaveReport(_ context.Context, report domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.reports = append(m.reports, report)
	return nil
}

func (m *memoryRepository) ReportsBySubmitter(_ context.Context, submittedBy string, limit int) ([]domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = limit
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Report
	for i := len(m.reports) - 1; i >= 0; i-- {
		if m.reports[i].SubmittedBy == submittedBy {
			out = append(out, m.reports[i])
		}
	}
	return out, nil
}

type fakeImageStore struct {
	keys      []string
	deleted   []string
	err       error
	deleteErr error
}

func (f *fakeImageStore) PutImage(_ context.Context, key string, _ domain.Image) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://images.example.com/" + key, nil
}

func (f *fakeImageStore) DeleteImage(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	reports   []domain.Report
	snapshots []domain.ConditionsSnapshot
	err       error
}

func (r *recordingNotifier) NotifyReport(_ context.Context, report domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	return r.err
}

func (r *recordingNotifier) NotifyConditions(_ context.Context, _ time.Time, snapshot domain.ConditionsSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snapshot)
	return r.err
}
