package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"CityPulse/internal/domain"
	"CityPulse/internal/ports"
)

// created_at holds Unix milliseconds so ordering is numeric.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS civic_reports (
    id           TEXT PRIMARY KEY,
    description  TEXT NOT NULL,
    department   TEXT NOT NULL,
    image_url    TEXT NOT NULL,
    lat          REAL NOT NULL,
    lon          REAL NOT NULL,
    status       TEXT NOT NULL,
    submitted_by TEXT NOT NULL,
    created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS civic_reports_submitted_by_idx
    ON civic_reports (submitted_by, created_at DESC);
`

var sqliteBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SQLiteRepository persists civic reports into an embedded SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.ReportRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository wires an open database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// OpenSQLite opens (or creates) the database file. One connection keeps writers serialized.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the reports table when missing.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveReport inserts one report.
func (r *SQLiteRepository) SaveReport(ctx context.Context, report domain.Report) error {
	query, args, err := insertReport(sqliteBuilder, report, report.CreatedAt.UnixMilli()).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// ReportsBySubmitter returns up to limit reports, newest first.
func (r *SQLiteRepository) ReportsBySubmitter(ctx context.Context, submittedBy string, limit int) ([]domain.Report, error) {
	query, args, err := selectBySubmitter(sqliteBuilder, submittedBy, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	reports := make([]domain.Report, 0)
	for rows.Next() {
		var createdMs int64
		report, err := scanReport(rows, &createdMs)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan report: %w", err)
		}
		report.CreatedAt = time.UnixMilli(createdMs).UTC()
		reports = append(reports, report)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return reports, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
