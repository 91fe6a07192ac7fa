package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"CityPulse/internal/domain"
	"CityPulse/internal/generation"
	"CityPulse/internal/ports"
	"CityPulse/internal/prompts"
)

const (
	noTrafficData = "No live traffic reports available."
	noWeatherData = "No live weather data available."
)

// Terms that suggest a report describes an actual disruption rather than general chatter.
var disruptionTerms = []string{
	"accident", "jam", "congestion", "closure", "closed", "blocked",
	"waterlogging", "flood", "diversion", "breakdown", "gridlock", "pile-up",
}

// AdvisorDeps wires the generation backend into the advisor.
type AdvisorDeps struct {
	Generator ports.Generator
	Prompts   *prompts.Set
	City      string
	// SummarySignals caps how many signal titles go into the route prompt.
	SummarySignals int
	// Timeout bounds each generation call.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Advisor turns a trip plus a conditions snapshot into travel advice.
type Advisor struct {
	generator      ports.Generator
	prompts        *prompts.Set
	city           string
	summarySignals int
	timeout        time.Duration
	logger         *slog.Logger
}

// NewAdvisor constructs the synthesis stage.
func NewAdvisor(deps AdvisorDeps) *Advisor {
	return &Advisor{
		generator:      deps.Generator,
		prompts:        deps.Prompts,
		city:           deps.City,
		summarySignals: deps.SummarySignals,
		timeout:        deps.Timeout,
		logger:         orDiscard(deps.Logger),
	}
}

// ValidateTrip trims and checks a trip request before any outbound call.
func ValidateTrip(trip domain.TripRequest) (domain.TripRequest, error) {
	trip.Origin = strings.TrimSpace(trip.Origin)
	trip.Destination = strings.TrimSpace(trip.Destination)
	if err := validateInput(trip); err != nil {
		return domain.TripRequest{}, err
	}
	return trip, nil
}

// Synthesize runs the route analysis and the predictive alerts generations in
// parallel. If either fails the whole call fails and no partial advice is returned.
func (a *Advisor) Synthesize(ctx context.Context, origin, destination string, conditions domain.ConditionsSnapshot) (domain.TravelAdvice, error) {
	trip, err := ValidateTrip(domain.TripRequest{Origin: origin, Destination: destination})
	if err != nil {
		return domain.TravelAdvice{}, err
	}

	routeReq, alertsReq, err := a.requests(trip, conditions)
	if err != nil {
		return domain.TravelAdvice{}, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	var (
		route  domain.RouteAdvisory
		alerts domain.PredictiveAlertSet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return generateInto(gctx, a.generator, a.timeout, routeReq, &route)
	})
	g.Go(func() error {
		return generateInto(gctx, a.generator, a.timeout, alertsReq, &alerts)
	})

	if err := g.Wait(); err != nil {
		a.logger.Error("travel advice generation failed",
			"origin", trip.Origin,
			"destination", trip.Destination,
			"err", err)
		return domain.TravelAdvice{}, err
	}

	alerts.Normalize()
	if conditions.Signals == nil {
		conditions.Signals = []domain.TrafficSignal{}
	}

	return domain.TravelAdvice{
		RouteAdvisory:    route,
		PredictiveAlerts: alerts.Alerts,
		Conditions:       conditions,
	}, nil
}

func (a *Advisor) requests(trip domain.TripRequest, conditions domain.ConditionsSnapshot) (generation.Request, generation.Request, error) {
	if a.prompts == nil {
		return generation.Request{}, generation.Request{}, fmt.Errorf("no prompt set configured")
	}

	weather := describeWeather(conditions.Weather)

	route, err := a.prompts.Render(prompts.RouteAnalysis, map[string]any{
		"City":        a.city,
		"Origin":      trip.Origin,
		"Destination": trip.Destination,
		"TrafficData": summarizeSignals(conditions, a.summarySignals),
		"WeatherData": weather,
	})
	if err != nil {
		return generation.Request{}, generation.Request{}, err
	}

	alerts, err := a.prompts.Render(prompts.PredictiveAlerts, map[string]any{
		"City":              a.city,
		"Origin":            trip.Origin,
		"Destination":       trip.Destination,
		"TrafficLevel":      trafficLevel(conditions.Signals),
		"WeatherConditions": weather,
		"Reports":           conditions.SignalTitles(0),
	})
	if err != nil {
		return generation.Request{}, generation.Request{}, err
	}

	return generation.Request{Name: route.Name, Prompt: route.Text, Schema: routeAdvisorySchema},
		generation.Request{Name: alerts.Name, Prompt: alerts.Text, Schema: predictiveAlertsSchema},
		nil
}

func summarizeSignals(conditions domain.ConditionsSnapshot, limit int) string {
	titles := conditions.SignalTitles(limit)
	if len(titles) == 0 {
		return noTrafficData
	}
	return strings.Join(titles, "; ")
}

func describeWeather(w *domain.WeatherSnapshot) string {
	if w == nil {
		return noWeatherData
	}
	desc := strings.TrimSpace(w.Description)
	if desc == "" {
		desc = "Current conditions"
	} else {
		first, size := utf8.DecodeRuneInString(desc)
		desc = string(unicode.ToUpper(first)) + desc[size:]
	}
	return fmt.Sprintf("%s, %.0f°C, wind %.1f m/s", desc, w.TemperatureCelsius, w.WindSpeedMs)
}

// trafficLevel grades the snapshot by how many signals mention a disruption.
func trafficLevel(signals []domain.TrafficSignal) string {
	if len(signals) == 0 {
		return "unknown (no live reports)"
	}

	hits := 0
	for _, s := range signals {
		title := strings.ToLower(s.Title)
		for _, term := range disruptionTerms {
			if strings.Contains(title, term) {
				hits++
				break
			}
		}
	}

	switch {
	case hits == 0:
		return "clear"
	case hits <= 3:
		return "moderate"
	default:
		return "heavy"
	}
}
