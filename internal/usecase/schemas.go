package usecase

import (
	"strings"

	"CityPulse/internal/domain"
	"CityPulse/internal/generation"
)

var routeAdvisorySchema = generation.Object("Route advice for one trip.", map[string]*generation.Schema{
	"trafficAnalysis": generation.String("A summary of the current traffic situation between the origin and destination."),
	"weatherImpact":   generation.String("How the current and predicted weather will impact the route."),
	"recommendation": generation.Object("Actionable route advice.", map[string]*generation.Schema{
		"primary":     generation.String("The main recommended route or action."),
		"alternative": generation.String("An alternative route or mode of transport."),
		"avoid":       generation.String("Specific routes or areas to avoid."),
	}),
	"bestDepartureTime": generation.String("The suggested best time to start the journey."),
	"prediction":        generation.String("A prediction of how traffic is likely to change."),
})

var predictiveAlertsSchema = generation.Object("Predicted incidents along the route.", map[string]*generation.Schema{
	"alerts": generation.Array("Predictive alerts, most relevant first.", generation.Object("", map[string]*generation.Schema{
		"type":              generation.String("The type of alert, e.g. accident, road closure, congestion."),
		"location":          generation.String("The location of the potential incident."),
		"description":       generation.String("A detailed description of the potential incident."),
		"relevance":         generation.Number("Between 0 and 1; how relevant the alert is to this trip."),
		"confidence":        generation.Number("Between 0 and 1; how likely the incident is."),
		"recommendedAction": generation.String("What the traveler should do about it."),
	})),
})

// The department stays a plain string in the schema; unknown values are clamped after decoding.
var civicIssueSchema = generation.Object("Description of a civic issue shown in a photo.", map[string]*generation.Schema{
	"description": generation.String("A concise description of the civic issue shown in the image."),
	"department": generation.String("The most relevant government department. Must be one of: " +
		strings.Join(departmentNames(), ", ") + "."),
	"locationDescription": generation.String("A description of the location based on visual cues in the image."),
})

func departmentNames() []string {
	names := make([]string, 0, 5)
	for _, d := range domain.Departments() {
		names = append(names, string(d))
	}
	return names
}
