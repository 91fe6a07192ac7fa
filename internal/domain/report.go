package domain

import "time"

// ReportStatus tracks a civic report through its handling.
type ReportStatus string

// StatusSubmitted is assigned to every newly filed report.
const StatusSubmitted ReportStatus = "Submitted"

// AnonymousSubmitter is used when a report carries no user identity.
const AnonymousSubmitter = "anonymous"

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// NewReport is the citizen input for filing a civic issue.
type NewReport struct {
	Description  string    `json:"description" validate:"min=10"`
	Department   string    `json:"department" validate:"required"`
	ImageDataURI string    `json:"imageDataUri" validate:"required"`
	Location     *GeoPoint `json:"location" validate:"required"`
	SubmittedBy  string    `json:"submittedBy"`
}

// Report is the flat record handed to report persistence.
type Report struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	Department  Department   `json:"department"`
	ImageURL    string       `json:"imageUrl"`
	Location    GeoPoint     `json:"location"`
	Status      ReportStatus `json:"status"`
	SubmittedBy string       `json:"submittedBy"`
	CreatedAt   time.Time    `json:"createdAt"`
}
