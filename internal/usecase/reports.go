package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"CityPulse/internal/domain"
	"CityPulse/internal/ports"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// ReportsDeps wires persistence and the optional side channels for civic reports.
type ReportsDeps struct {
	Repository ports.ReportRepository
	// Images is optional; without it the photo is stored inline as a data URI.
	Images    ports.ImageStore
	Notifiers []ports.ReportNotifier
	Clock     func() time.Time
	NewID     func() string
	Logger    *slog.Logger
}

// Reports files civic issue reports and lists a citizen's history.
type Reports struct {
	repository ports.ReportRepository
	images     ports.ImageStore
	notifiers  []ports.ReportNotifier
	clock      func() time.Time
	newID      func() string
	logger     *slog.Logger
}

// NewReports constructs the report use case.
func NewReports(deps ReportsDeps) *Reports {
	r := &Reports{
		repository: deps.Repository,
		images:     deps.Images,
		clock:      deps.Clock,
		newID:      deps.NewID,
		logger:     orDiscard(deps.Logger),
	}
	for _, n := range deps.Notifiers {
		if n != nil {
			r.notifiers = append(r.notifiers, n)
		}
	}
	if r.clock == nil {
		r.clock = time.Now
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}
	return r
}

// Submit validates and persists a new report, then informs the notifiers.
// Notifier failures are logged and do not fail the submission.
func (r *Reports) Submit(ctx context.Context, in domain.NewReport) (domain.Report, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.SubmittedBy = strings.TrimSpace(in.SubmittedBy)
	if in.SubmittedBy == "" {
		in.SubmittedBy = domain.AnonymousSubmitter
	}

	if err := validateInput(in); err != nil {
		return domain.Report{}, err
	}
	dept, ok := domain.ParseDepartment(in.Department)
	if !ok {
		return domain.Report{}, fmt.Errorf("%w: department must be one of %s",
			domain.ErrValidation, strings.Join(departmentNames(), ", "))
	}
	img, err := domain.ParseDataURI(in.ImageDataURI)
	if err != nil {
		return domain.Report{}, err
	}
	if r.repository == nil {
		return domain.Report{}, fmt.Errorf("report storage is not configured")
	}

	report := domain.Report{
		ID:          r.newID(),
		Description: in.Description,
		Department:  dept,
		Location:    *in.Location,
		Status:      domain.StatusSubmitted,
		SubmittedBy: in.SubmittedBy,
		CreatedAt:   r.clock().UTC(),
	}

	var imageKey string
	report.ImageURL, imageKey, err = r.storeImage(ctx, report, img)
	if err != nil {
		return domain.Report{}, err
	}

	if err := r.repository.SaveReport(ctx, report); err != nil {
		r.discardImage(ctx, report.ID, imageKey)
		return domain.Report{}, fmt.Errorf("save report: %w", err)
	}

	r.logger.Info("report submitted",
		"id", report.ID,
		"department", string(report.Department),
		"submitted_by", report.SubmittedBy)

	for _, n := range r.notifiers {
		if err := n.NotifyReport(ctx, report); err != nil {
			r.logger.Warn("report notification failed", "id", report.ID, "err", err)
		}
	}

	return report, nil
}

// History lists the reports filed by submittedBy, newest first.
func (r *Reports) History(ctx context.Context, submittedBy string, limit int) ([]domain.Report, error) {
	submittedBy = strings.TrimSpace(submittedBy)
	if submittedBy == "" {
		return nil, fmt.Errorf("%w: user is required", domain.ErrValidation)
	}
	if r.repository == nil {
		return nil, fmt.Errorf("report storage is not configured")
	}

	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	reports, err := r.repository.ReportsBySubmitter(ctx, submittedBy, limit)
	if err != nil {
		return nil, fmt.Errorf("load reports for %s: %w", submittedBy, err)
	}
	if reports == nil {
		reports = []domain.Report{}
	}
	return reports, nil
}

// storeImage returns the URL to persist and, when uploaded, the object key.
func (r *Reports) storeImage(ctx context.Context, report domain.Report, img domain.Image) (string, string, error) {
	if r.images == nil {
		return img.DataURI(), "", nil
	}

	key := ImageKey(report, img)
	url, err := r.images.PutImage(ctx, key, img)
	if err != nil {
		return "", "", fmt.Errorf("upload report image: %w", err)
	}
	return url, key, nil
}

// discardImage removes an uploaded photo whose report was never saved.
func (r *Reports) discardImage(ctx context.Context, reportID, key string) {
	if key == "" {
		return
	}
	if err := r.images.DeleteImage(context.WithoutCancel(ctx), key); err != nil {
		r.logger.Error("orphaned report image", "id", reportID, "key", key, "err", err)
		return
	}
	r.logger.Warn("report image removed after failed save", "id", reportID, "key", key)
}

// ImageKey is the object key for a report photo: reports/<user>/<unix-ms>-<id><ext>.
func ImageKey(report domain.Report, img domain.Image) string {
	return fmt.Sprintf("reports/%s/%d-%s%s",
		safeKeySegment(report.SubmittedBy),
		report.CreatedAt.UnixMilli(),
		report.ID,
		img.Extension())
}

func safeKeySegment(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.', r == '@':
			return r
		default:
			return '_'
		}
	}, value)
}
