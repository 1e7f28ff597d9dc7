//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/calmstreak/internal/adapter/kafka"
	"github.com/couchcryptid/calmstreak/internal/adapter/netcdf"
	"github.com/couchcryptid/calmstreak/internal/config"
	"github.com/couchcryptid/calmstreak/internal/domain"
	"github.com/couchcryptid/calmstreak/internal/observability"
	"github.com/couchcryptid/calmstreak/internal/pipeline"
)

const testNotifyTopic = "test-calm-streak-runs"

func sampleGrid() domain.Grid {
	shape := domain.Shape{T: 4, Y: 2, X: 2}
	u := domain.NewField(shape)
	v := domain.NewField(shape)
	for i := range u.Data {
		u.Data[i] = float32(i%5) * 1.5
		v.Data[i] = 0.5
	}
	return domain.Grid{
		Wind:  domain.VectorField{U: u, V: v},
		Lat:   domain.NewStaticCoordinate(2, 2, []float32{44.9, 44.9, 45.0, 45.0}),
		Lon:   domain.NewStaticCoordinate(2, 2, []float32{-93.1, -93.0, -93.1, -93.0}),
		Times: domain.TimeLabels{"2024-07-01_00:00:00", "2024-07-01_01:00:00", "2024-07-01_02:00:00", "2024-07-01_03:00:00"},
	}
}

// TestPipelineNotifiesKafka runs a NetCDF job end to end and reads the run
// report back from the notification topic.
func TestPipelineNotifiesKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testNotifyTopic)

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaNotifyTopic: testNotifyTopic,
		KafkaTimeout:     30 * time.Second,
		NotifyEnabled:    true,
	}

	dir := t.TempDir()
	job := pipeline.Job{
		Input:     filepath.Join(dir, "wrfout_d01.nc"),
		Output:    filepath.Join(dir, "output.nc"),
		Threshold: 3.0,
	}
	require.NoError(t, netcdf.WriteGrid(job.Input, sampleGrid()))

	notifier := kafka.NewNotifier(cfg, discardLogger())
	t.Cleanup(func() { _ = notifier.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(
		netcdf.NewReader(discardLogger()),
		pipeline.NewTransformer(discardLogger()),
		netcdf.NewWriter(discardLogger()),
		notifier,
		discardLogger(),
		metrics,
	)

	report, err := p.Run(ctx, job)
	require.NoError(t, err)
	assert.FileExists(t, job.Output)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testNotifyTopic,
		GroupID:     fmt.Sprintf("test-notify-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from notify topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, kafka.EventType, headers["event_type"])
	_, err = time.Parse(time.RFC3339, headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	assert.Equal(t, report.RunID, string(msg.Key))
	var got domain.RunReport
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, report.RunID, got.RunID)
	assert.Equal(t, job.Output, got.Output)
	assert.Equal(t, domain.Shape{T: 4, Y: 2, X: 2}, got.Shape)
	assert.Equal(t, "2024-07-01_03:00:00", got.LastTime)
	assert.Equal(t, report.Summary, got.Summary)
}

// TestNotifierUnreachableBroker checks that a dead broker fails the publish
// within the configured timeout while the run itself succeeds.
func TestNotifierUnreachableBroker(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:     []string{"127.0.0.1:1"},
		KafkaNotifyTopic: testNotifyTopic,
		KafkaTimeout:     2 * time.Second,
	}
	notifier := kafka.NewNotifier(cfg, discardLogger())
	t.Cleanup(func() { _ = notifier.Close() })

	dir := t.TempDir()
	job := pipeline.Job{
		Input:     filepath.Join(dir, "wrfout_d01.nc"),
		Output:    filepath.Join(dir, "output.nc"),
		Threshold: 3.0,
	}
	require.NoError(t, netcdf.WriteGrid(job.Input, sampleGrid()))

	p := pipeline.New(
		netcdf.NewReader(discardLogger()),
		pipeline.NewTransformer(discardLogger()),
		netcdf.NewWriter(discardLogger()),
		notifier,
		discardLogger(),
		observability.NewMetricsForTesting(),
	)

	start := time.Now()
	_, err := p.Run(context.Background(), job)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 30*time.Second)
	assert.FileExists(t, job.Output)
}
