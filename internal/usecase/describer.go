package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"CityPulse/internal/domain"
	"CityPulse/internal/generation"
	"CityPulse/internal/ports"
	"CityPulse/internal/prompts"
)

// DescriberDeps wires the generation backend into the issue describer.
type DescriberDeps struct {
	Generator ports.Generator
	Prompts   *prompts.Set
	City      string
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Describer classifies a photographed civic issue.
type Describer struct {
	generator ports.Generator
	prompts   *prompts.Set
	city      string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewDescriber constructs the image synthesis stage.
func NewDescriber(deps DescriberDeps) *Describer {
	return &Describer{
		generator: deps.Generator,
		prompts:   deps.Prompts,
		city:      deps.City,
		timeout:   deps.Timeout,
		logger:    orDiscard(deps.Logger),
	}
}

// DescribeIssue sends the image with the instruction prompt and returns the
// generated description. A department outside the known set becomes Other.
func (d *Describer) DescribeIssue(ctx context.Context, img domain.Image) (domain.CivicIssueDescription, error) {
	if len(img.Data) == 0 || !strings.HasPrefix(img.MIMEType, "image/") {
		return domain.CivicIssueDescription{}, fmt.Errorf("%w: empty or non-image payload", domain.ErrInvalidImage)
	}
	if d.prompts == nil {
		return domain.CivicIssueDescription{}, fmt.Errorf("%w: no prompt set configured", domain.ErrGeneration)
	}

	rendered, err := d.prompts.Render(prompts.DescribeIssue, map[string]any{"City": d.city})
	if err != nil {
		return domain.CivicIssueDescription{}, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	req := generation.Request{
		Name:   rendered.Name,
		Prompt: rendered.Text,
		Media:  []generation.Media{{MIMEType: img.MIMEType, Data: img.Data}},
		Schema: civicIssueSchema,
	}

	var out domain.CivicIssueDescription
	if err := generateInto(ctx, d.generator, d.timeout, req, &out); err != nil {
		d.logger.Error("issue description failed", "mime", img.MIMEType, "bytes", len(img.Data), "err", err)
		return domain.CivicIssueDescription{}, err
	}

	raw := out.Department
	out.Department = domain.NormalizeDepartment(string(raw))
	if string(out.Department) != string(raw) {
		d.logger.Debug("department normalized", "generated", string(raw), "department", string(out.Department))
	}
	return out, nil
}
