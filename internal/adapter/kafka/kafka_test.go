package kafka

import (
	"encoding/json"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/calmstreak/internal/config"
	"github.com/couchcryptid/calmstreak/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 7, 2, 6, 0, 0, 0, time.UTC)
	report := domain.RunReport{
		RunID:     "5f1c6a52-0d1e-4c55-9a3b-1d2f0c9e8b7a",
		Input:     "wrfout_d01.nc",
		Output:    "output.nc",
		Threshold: 3.0,
		Shape:     domain.Shape{T: 5, Y: 1, X: 2},
		FirstTime: "2024-07-01_00:00:00",
		LastTime:  "2024-07-01_04:00:00",
		Summary: domain.Summary{
			MeanSpeed:    1.25,
			MaxSpeed:     5,
			MaxStreak:    4,
			CalmFraction: 1,
		},
		CompletedAt: now,
	}

	msg, err := serializeToMessage(report)
	require.NoError(t, err)

	assert.Equal(t, []byte(report.RunID), msg.Key)
	assert.Contains(t, string(msg.Value), `"max_streak":4`)
	assert.Contains(t, string(msg.Value), `"shape":{"time":5,"south_north":1,"west_east":2}`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte(EventType), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var roundtrip domain.RunReport
	require.NoError(t, json.Unmarshal(msg.Value, &roundtrip))
	assert.Equal(t, report, roundtrip)
}

func TestSerializeToMessage_MissingWind(t *testing.T) {
	shape := domain.Shape{T: 2, Y: 1, X: 2}
	b := domain.ResultBundle{
		Shape:   shape,
		Speed:   domain.Field{Shape: shape, Data: []float32{1, float32(math.NaN()), 2, 3}},
		Streaks: domain.StreakField{Shape: shape, Data: []int32{0, 0, 1, 0}},
	}

	msg, err := serializeToMessage(domain.NewRunReport(b, "wrfout_d01.nc", "output.nc"))
	require.NoError(t, err)
	assert.Contains(t, string(msg.Value), `"mean_speed":2`)
	assert.Contains(t, string(msg.Value), `"max_speed":3`)
}

func TestNewNotifier(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers:     []string{"broker-1:9092"},
		KafkaNotifyTopic: "calm-streak-runs",
		KafkaTimeout:     3 * time.Second,
	}
	n := NewNotifier(cfg, slog.Default())
	t.Cleanup(func() { _ = n.Close() })

	assert.Equal(t, "calm-streak-runs", n.writer.Topic)
	assert.Equal(t, "broker-1:9092", n.writer.Addr.String())
	assert.Equal(t, 3*time.Second, n.timeout)
}
