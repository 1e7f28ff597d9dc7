package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/calmstreak/internal/domain"
)

// CalmTransformer implements Transformer with the domain speed and streak
// functions.
type CalmTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a CalmTransformer.
func NewTransformer(logger *slog.Logger) *CalmTransformer {
	return &CalmTransformer{logger: logger}
}

func (t *CalmTransformer) Transform(ctx context.Context, grid domain.Grid, threshold float64) (domain.ResultBundle, error) {
	if err := grid.Validate(); err != nil {
		return domain.ResultBundle{}, err
	}
	speed, err := domain.ComputeSpeed(grid.Wind)
	if err != nil {
		return domain.ResultBundle{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.ResultBundle{}, err
	}
	streaks := domain.AccumulateStreaks(speed, threshold)
	t.logger.Debug("streaks accumulated", "time_steps", streaks.Shape.T, "threshold", threshold)
	return domain.Assemble(grid, speed, streaks, threshold)
}
