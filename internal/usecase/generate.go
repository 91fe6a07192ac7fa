package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"CityPulse/internal/domain"
	"CityPulse/internal/generation"
	"CityPulse/internal/ports"
)

// generateInto runs one structured generation and decodes the result into out.
// Every failure is reported as domain.ErrGeneration.
func generateInto(ctx context.Context, gen ports.Generator, timeout time.Duration, req generation.Request, out any) error {
	if gen == nil {
		return fmt.Errorf("%w: %s: no generation backend configured", domain.ErrGeneration, req.Name)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	raw, err := gen.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrGeneration, req.Name, err)
	}
	if err := generation.Decode(raw, req.Schema, out); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrGeneration, req.Name, err)
	}
	return nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
