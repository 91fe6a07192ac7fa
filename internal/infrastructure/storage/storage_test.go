package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CityPulse/internal/domain"
)

func sampleReport(id, user string, created time.Time) domain.Report {
	return domain.Report{
		ID:          id,
		Description: "Pothole on the service road",
		Department:  domain.DepartmentBBMP,
		ImageURL:    "https://images.example.com/" + id + ".png",
		Location:    domain.GeoPoint{Lat: 12.9352, Lon: 77.6245},
		Status:      domain.StatusSubmitted,
		SubmittedBy: user,
		CreatedAt:   created,
	}
}

func TestPostgresQueries(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 7, 14, 9, 30, 0, 0, time.UTC)
	query, args, err := insertReport(psql, sampleReport("r-1", "u", created), created).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO civic_reports (id,description,department,image_url,lat,lon,status,submitted_by,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)",
		query)
	require.Len(t, args, 9)
	assert.Equal(t, "BBMP", args[2])
	assert.Equal(t, created, args[8])

	query, args, err = selectBySubmitter(psql, "u", 20).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, description, department, image_url, lat, lon, status, submitted_by, created_at FROM civic_reports WHERE submitted_by = $1 ORDER BY created_at DESC, id DESC LIMIT 20",
		query)
	assert.Equal(t, []any{"u"}, args)
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)

	repo := NewSQLiteRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))

	base := time.Date(2024, 7, 14, 9, 30, 0, 0, time.UTC)
	older := sampleReport("a", "alice", base)
	newer := sampleReport("b", "alice", base.Add(time.Hour))
	other := sampleReport("c", "bob", base.Add(2*time.Hour))
	for _, r := range []domain.Report{older, newer, other} {
		require.NoError(t, repo.SaveReport(ctx, r))
	}

	got, err := repo.ReportsBySubmitter(ctx, "alice", 10)
	require.NoError(t, err)
	if diff := cmp.Diff([]domain.Report{newer, older}, got); diff != "" {
		t.Fatalf("reports mismatch (-want +got):\n%s", diff)
	}

	got, err = repo.ReportsBySubmitter(ctx, "alice", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	got, err = repo.ReportsBySubmitter(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	require.Error(t, repo.SaveReport(ctx, older), "duplicate ids are rejected")
}

// Runs only when a disposable Postgres database is provided.
func TestPostgresRepositoryRoundTrip(t *testing.T) {
	dsn := os.Getenv("CITYPULSE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CITYPULSE_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewPostgresRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	user := "test-" + uuid.NewString()
	created := time.Now().UTC().Truncate(time.Microsecond)
	report := sampleReport(uuid.NewString(), user, created)
	require.NoError(t, repo.SaveReport(ctx, report))

	got, err := repo.ReportsBySubmitter(ctx, user, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, report, got[0])
}
