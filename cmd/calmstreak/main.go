package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/calmstreak/internal/adapter/cli"
	kafkaadapter "github.com/couchcryptid/calmstreak/internal/adapter/kafka"
	"github.com/couchcryptid/calmstreak/internal/adapter/netcdf"
	"github.com/couchcryptid/calmstreak/internal/config"
	"github.com/couchcryptid/calmstreak/internal/domain"
	"github.com/couchcryptid/calmstreak/internal/observability"
	"github.com/couchcryptid/calmstreak/internal/pipeline"
)

// Exit statuses.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "calmstreak: configuration: %v\n", err)
		if errors.Is(err, domain.ErrInvalidThreshold) {
			return exitUsage
		}
		return exitFailure
	}

	req, err := cli.ParseArgs(args, cfg)
	if err == nil && req.Interactive {
		req, err = cli.Prompt(stdin, stdout, req)
	}
	if err != nil {
		return usageFailure(stderr, err)
	}

	logger := observability.NewLogger(stderr, cfg)
	metrics := observability.NewMetrics()

	var notifier pipeline.Notifier
	if cfg.NotifyEnabled {
		n := kafkaadapter.NewNotifier(cfg, logger)
		defer func() {
			if err := n.Close(); err != nil {
				logger.Error("kafka notifier close error", "error", err)
			}
		}()
		notifier = n
		logger.Info("run notifications enabled", "topic", cfg.KafkaNotifyTopic)
	}

	p := pipeline.New(
		netcdf.NewReader(logger),
		pipeline.NewTransformer(logger),
		netcdf.NewWriter(logger),
		notifier,
		logger,
		metrics,
	)

	_, err = p.Run(ctx, pipeline.Job{Input: req.Input, Output: req.Output, Threshold: req.Threshold})
	writeMetrics(cfg, metrics, logger)
	if err != nil {
		fmt.Fprintf(stderr, "calmstreak: %s\n", diagnose(err, req))
		return exitFailure
	}

	fmt.Fprintf(stdout, "Result saved to %s\n", req.Output)
	return exitOK
}

func usageFailure(stderr io.Writer, err error) int {
	var usage *cli.UsageError
	if errors.As(err, &usage) {
		fmt.Fprintf(stderr, "calmstreak: %v\n%s", usage.Err, usage.Usage)
		return exitUsage
	}
	fmt.Fprintf(stderr, "calmstreak: %v\n", err)
	return exitFailure
}

// diagnose turns a run error into a one-line message for the user.
func diagnose(err error, req cli.Request) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Sprintf("input file %s not found or not a NetCDF file", req.Input)
	case errors.Is(err, domain.ErrMissingField), errors.Is(err, domain.ErrShapeMismatch):
		return fmt.Sprintf("%s is not a usable WRF wind file: %v", req.Input, err)
	case errors.Is(err, domain.ErrWrite):
		return fmt.Sprintf("could not write %s: %v", req.Output, err)
	default:
		return err.Error()
	}
}

func writeMetrics(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) {
	if cfg.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
		logger.Error("metrics textfile write failed", "path", cfg.MetricsTextfile, "error", err)
	}
}
