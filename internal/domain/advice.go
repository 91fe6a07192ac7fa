package domain

import "math"

// TripRequest is the caller input for travel advice.
type TripRequest struct {
	Origin      string `json:"origin" validate:"min=3"`
	Destination string `json:"destination" validate:"min=3"`
}

// RouteRecommendation holds the actionable part of a route advisory.
type RouteRecommendation struct {
	Primary     string `json:"primary" validate:"required"`
	Alternative string `json:"alternative"`
	Avoid       string `json:"avoid"`
}

// RouteAdvisory is the generated route analysis for one trip.
type RouteAdvisory struct {
	TrafficAnalysis   string              `json:"trafficAnalysis" validate:"required"`
	WeatherImpact     string              `json:"weatherImpact" validate:"required"`
	Recommendation    RouteRecommendation `json:"recommendation"`
	BestDepartureTime string              `json:"bestDepartureTime" validate:"required"`
	Prediction        string              `json:"prediction" validate:"required"`
}

// PredictiveAlert is one predicted incident along a route.
type PredictiveAlert struct {
	Type              string  `json:"type" validate:"required"`
	Location          string  `json:"location"`
	Description       string  `json:"description" validate:"required"`
	Relevance         float64 `json:"relevance"`
	Confidence        float64 `json:"confidence"`
	RecommendedAction string  `json:"recommendedAction"`
}

// PredictiveAlertSet is the generated list of alerts for one trip.
type PredictiveAlertSet struct {
	Alerts []PredictiveAlert `json:"alerts" validate:"dive"`
}

// Normalize clamps relevance and confidence of every alert into [0,1].
func (s *PredictiveAlertSet) Normalize() {
	if s.Alerts == nil {
		s.Alerts = []PredictiveAlert{}
	}
	for i := range s.Alerts {
		s.Alerts[i].Relevance = clampUnit(s.Alerts[i].Relevance)
		s.Alerts[i].Confidence = clampUnit(s.Alerts[i].Confidence)
	}
}

// TravelAdvice is the merged result returned for one trip request.
type TravelAdvice struct {
	RouteAdvisory    RouteAdvisory      `json:"routeAnalysis"`
	PredictiveAlerts []PredictiveAlert  `json:"predictiveAlerts"`
	Conditions       ConditionsSnapshot `json:"conditions"`
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
