package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/calmstreak/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &config.Config{LogLevel: "info", LogFormat: "json"})

	logger.Debug("hidden")
	logger.Info("run complete", "time_steps", 24)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "run complete", line["msg"])
	assert.Equal(t, "calmstreak", line["service"])
	assert.EqualValues(t, 24, line["time_steps"])
}

func TestNewLogger_TextDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &config.Config{LogLevel: "debug", LogFormat: "text"})

	logger.Debug("scan step", "t", 3)
	assert.Contains(t, buf.String(), "msg=\"scan step\"")
	assert.Contains(t, buf.String(), "t=3")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("warn").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
	assert.Equal(t, "INFO", parseLevel("anything").String())
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.Runs.WithLabelValues("success").Inc()
	m.MaxStreak.Set(7)
	m.StageDuration.WithLabelValues("load").Observe(0.2)

	path := filepath.Join(t.TempDir(), "calmstreak.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `calmstreak_runs_total{outcome="success"} 1`)
	assert.Contains(t, string(data), "calmstreak_max_calm_streak_steps 7")
	assert.Contains(t, string(data), `calmstreak_stage_duration_seconds_count{stage="load"} 1`)
}

func TestMetricsForTesting_NoTextfile(t *testing.T) {
	m := NewMetricsForTesting()
	m.Runs.WithLabelValues("error").Inc()
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("error")), 1e-9)

	path := filepath.Join(t.TempDir(), "none.prom")
	require.NoError(t, m.WriteTextfile(path))
	assert.NoFileExists(t, path)
}
