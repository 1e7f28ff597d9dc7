package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/calmstreak/internal/domain"
	"github.com/couchcryptid/calmstreak/internal/observability"
)

// GridExtractor reads a wind grid from a source file.
type GridExtractor interface {
	Extract(ctx context.Context, path string) (domain.Grid, error)
}

// Transformer derives the result bundle from a grid.
type Transformer interface {
	Transform(ctx context.Context, grid domain.Grid, threshold float64) (domain.ResultBundle, error)
}

// BundleLoader writes a result bundle to its destination.
type BundleLoader interface {
	Load(ctx context.Context, b domain.ResultBundle, path string) error
}

// Notifier announces a completed run.
type Notifier interface {
	Notify(ctx context.Context, report domain.RunReport) error
}

// Job is one requested run.
type Job struct {
	Input     string
	Output    string
	Threshold float64
}

// Pipeline runs extract, transform and load once per job.
type Pipeline struct {
	extractor   GridExtractor
	transformer Transformer
	loader      BundleLoader
	notifier    Notifier
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline with the given stages and observability. notifier may
// be nil.
func New(e GridExtractor, t Transformer, l BundleLoader, n Notifier, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		notifier:    n,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run processes job. Nothing is written unless extraction and transformation
// both succeed. A failed notification is logged but does not fail the run.
func (p *Pipeline) Run(ctx context.Context, job Job) (domain.RunReport, error) {
	logger := p.logger.With("input", job.Input, "output", job.Output, "threshold", job.Threshold)
	logger.Info("run started")

	var grid domain.Grid
	err := p.stage(ctx, "extract", func(ctx context.Context) error {
		var err error
		grid, err = p.extractor.Extract(ctx, job.Input)
		return err
	})
	if err != nil {
		return p.fail(logger, "extract", err)
	}
	shape := grid.Shape()
	p.metrics.TimeSteps.Set(float64(shape.T))
	p.metrics.GridCells.Set(float64(shape.Cells()))
	logger.Debug("grid extracted", "time_steps", shape.T, "south_north", shape.Y, "west_east", shape.X)

	var bundle domain.ResultBundle
	err = p.stage(ctx, "transform", func(ctx context.Context) error {
		var err error
		bundle, err = p.transformer.Transform(ctx, grid, job.Threshold)
		return err
	})
	if err != nil {
		return p.fail(logger, "transform", err)
	}

	err = p.stage(ctx, "load", func(ctx context.Context) error {
		return p.loader.Load(ctx, bundle, job.Output)
	})
	if err != nil {
		return p.fail(logger, "load", err)
	}

	report := domain.NewRunReport(bundle, job.Input, job.Output)
	p.record(report)
	logger.Info("run completed",
		"run_id", report.RunID,
		"time_steps", shape.T,
		"mean_speed", report.Summary.MeanSpeed,
		"max_speed", report.Summary.MaxSpeed,
		"max_streak", report.Summary.MaxStreak,
		"calm_fraction", report.Summary.CalmFraction,
	)

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, report); err != nil {
			p.metrics.StageErrors.WithLabelValues("notify").Inc()
			logger.Warn("run notification failed", "run_id", report.RunID, "error", err)
		}
	}
	return report, nil
}

// stage times fn under the given stage label.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn(ctx)
	p.metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (p *Pipeline) fail(logger *slog.Logger, stage string, err error) (domain.RunReport, error) {
	p.metrics.StageErrors.WithLabelValues(stage).Inc()
	p.metrics.Runs.WithLabelValues(Outcome(err)).Inc()
	logger.Error("run failed", "stage", stage, "error", err)
	return domain.RunReport{}, err
}

func (p *Pipeline) record(r domain.RunReport) {
	p.metrics.Runs.WithLabelValues(OutcomeSuccess).Inc()
	p.metrics.MeanSpeed.Set(r.Summary.MeanSpeed)
	p.metrics.MaxSpeed.Set(r.Summary.MaxSpeed)
	p.metrics.MaxStreak.Set(float64(r.Summary.MaxStreak))
	p.metrics.CalmFraction.Set(r.Summary.CalmFraction)
	p.metrics.LastSuccess.SetToCurrentTime()
}

// Run outcome labels.
const (
	OutcomeSuccess      = "success"
	OutcomeNotFound     = "not_found"
	OutcomeInvalidInput = "invalid_input"
	OutcomeWriteError   = "write_error"
	OutcomeError        = "error"
)

// Outcome classifies a run error for the runs_total metric.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrMissingField), errors.Is(err, domain.ErrShapeMismatch):
		return OutcomeInvalidInput
	case errors.Is(err, domain.ErrWrite):
		return OutcomeWriteError
	default:
		return OutcomeError
	}
}
