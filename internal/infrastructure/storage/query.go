package storage

import (
	sq "github.com/Masterminds/squirrel"

	"CityPulse/internal/domain"
)

const reportsTable = "civic_reports"

var reportColumns = []string{
	"id",
	"description",
	"department",
	"image_url",
	"lat",
	"lon",
	"status",
	"submitted_by",
	"created_at",
}

// insertReport builds the append-only insert; createdAt is passed in the driver's native form.
func insertReport(b sq.StatementBuilderType, r domain.Report, createdAt any) sq.InsertBuilder {
	return b.Insert(reportsTable).
		Columns(reportColumns...).
		Values(
			r.ID,
			r.Description,
			string(r.Department),
			r.ImageURL,
			r.Location.Lat,
			r.Location.Lon,
			string(r.Status),
			r.SubmittedBy,
			createdAt,
		)
}

// selectBySubmitter lists one submitter's reports, newest first.
func selectBySubmitter(b sq.StatementBuilderType, submittedBy string, limit int) sq.SelectBuilder {
	q := b.Select(reportColumns...).
		From(reportsTable).
		Where(sq.Eq{"submitted_by": submittedBy}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}

// scanner is satisfied by both pgx.Rows and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanReport reads one row in reportColumns order; created_at goes into createdAt.
func scanReport(row scanner, createdAt any) (domain.Report, error) {
	var (
		r          domain.Report
		department string
		status     string
	)
	err := row.Scan(
		&r.ID,
		&r.Description,
		&department,
		&r.ImageURL,
		&r.Location.Lat,
		&r.Location.Lon,
		&status,
		&r.SubmittedBy,
		createdAt,
	)
	if err != nil {
		return domain.Report{}, err
	}
	r.Department = domain.Department(department)
	r.Status = domain.ReportStatus(status)
	return r, nil
}
