package usecase

import (
	"context"

	"CityPulse/internal/domain"
)

// TravelService answers a trip request from live conditions.
type TravelService struct {
	aggregator *Aggregator
	advisor    *Advisor
}

// NewTravelService couples aggregation and synthesis.
func NewTravelService(aggregator *Aggregator, advisor *Advisor) *TravelService {
	return &TravelService{aggregator: aggregator, advisor: advisor}
}

// GetTravelAdvice validates the trip, gathers current conditions and synthesizes advice.
// Invalid input is rejected before any adapter or generation call.
func (s *TravelService) GetTravelAdvice(ctx context.Context, trip domain.TripRequest) (domain.TravelAdvice, error) {
	trip, err := ValidateTrip(trip)
	if err != nil {
		return domain.TravelAdvice{}, err
	}

	conditions := s.Conditions(ctx)
	return s.advisor.Synthesize(ctx, trip.Origin, trip.Destination, conditions)
}

// Conditions returns a fresh snapshot without generating advice.
func (s *TravelService) Conditions(ctx context.Context) domain.ConditionsSnapshot {
	if s.aggregator == nil {
		return domain.ConditionsSnapshot{Signals: []domain.TrafficSignal{}}
	}
	return s.aggregator.Aggregate(ctx)
}
