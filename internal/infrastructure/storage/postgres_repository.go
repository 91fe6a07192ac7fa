package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"CityPulse/internal/domain"
	"CityPulse/internal/ports"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS civic_reports (
    id           TEXT PRIMARY KEY,
    description  TEXT NOT NULL,
    department   TEXT NOT NULL,
    image_url    TEXT NOT NULL,
    lat          DOUBLE PRECISION NOT NULL,
    lon          DOUBLE PRECISION NOT NULL,
    status       TEXT NOT NULL,
    submitted_by TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS civic_reports_submitted_by_idx
    ON civic_reports (submitted_by, created_at DESC);
`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists civic reports into Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ReportRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a pgx pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// OpenPostgres connects a pool and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the reports table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveReport inserts one report.
func (r *PostgresRepository) SaveReport(ctx context.Context, report domain.Report) error {
	query, args, err := insertReport(psql, report, report.CreatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// ReportsBySubmitter returns up to limit reports, newest first.
func (r *PostgresRepository) ReportsBySubmitter(ctx context.Context, submittedBy string, limit int) ([]domain.Report, error) {
	query, args, err := selectBySubmitter(psql, submittedBy, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := make([]domain.Report, 0)
	for rows.Next() {
		var created time.Time
		report, err := scanReport(rows, &created)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		report.CreatedAt = created.UTC()
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return reports, nil
}
