package pipeline_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/calmstreak/internal/adapter/netcdf"
	"github.com/couchcryptid/calmstreak/internal/domain"
	"github.com/couchcryptid/calmstreak/internal/pipeline"
)

func netcdfPipeline() *pipeline.Pipeline {
	logger := slog.New(slog.DiscardHandler)
	return pipeline.New(
		netcdf.NewReader(logger),
		pipeline.NewTransformer(logger),
		netcdf.NewWriter(logger),
		nil,
		logger,
		newTestMetrics(),
	)
}

func TestPipeline_NetCDF_EndToEnd(t *testing.T) {
	freezeClock(t)
	dir := t.TempDir()
	job := pipeline.Job{
		Input:     filepath.Join(dir, "wrfout_d01.nc"),
		Output:    filepath.Join(dir, "output.nc"),
		Threshold: 3.0,
	}
	require.NoError(t, netcdf.WriteGrid(job.Input, calmGrid()))

	report, err := netcdfPipeline().Run(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, job.Output, report.Output)

	got, meta, err := netcdf.ReadBundle(job.Output)
	require.NoError(t, err)
	if diff := cmp.Diff([]int32{0, 0, 1, 1, 2, 2, 0, 3, 1, 4}, got.Streaks.Data); diff != "" {
		t.Errorf("acc mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, calmGrid().Times, got.Times)
	assert.Equal(t, domain.CoordinatesTag, meta.Variables[domain.VarXLAT].Coordinates)
	assert.Equal(t, "XY ", meta.Variables[domain.VarXLONG].MemoryOrder)
	assert.Equal(t, job.Input, meta.Global.Source)
	assert.Contains(t, meta.Global.Description, "3")
}

func TestPipeline_NetCDF_MissingV10WritesNothing(t *testing.T) {
	dir := t.TempDir()
	job := pipeline.Job{
		Input:     filepath.Join(dir, "wrfout_d01.nc"),
		Output:    filepath.Join(dir, "output.nc"),
		Threshold: 3.0,
	}
	require.NoError(t, netcdf.WriteGrid(job.Input, calmGrid(), netcdf.WithoutVariables(domain.VarV10)))

	_, err := netcdfPipeline().Run(context.Background(), job)
	require.ErrorIs(t, err, domain.ErrMissingField)
	assert.NoFileExists(t, job.Output)
}

func TestPipeline_NetCDF_MissingInputWritesNothing(t *testing.T) {
	dir := t.TempDir()
	job := pipeline.Job{
		Input:     filepath.Join(dir, "absent.nc"),
		Output:    filepath.Join(dir, "output.nc"),
		Threshold: 3.0,
	}

	_, err := netcdfPipeline().Run(context.Background(), job)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), job.Input)
	assert.NoFileExists(t, job.Output)
}
