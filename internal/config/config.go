package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/calmstreak/internal/domain"
)

// Config holds all run settings, populated from environment variables.
// Command-line flags override Threshold and OutputPath.
type Config struct {
	Threshold  float64
	OutputPath string
	LogLevel   string
	LogFormat  string

	// MetricsTextfile, when set, receives the Prometheus text exposition of
	// each run for a node_exporter textfile collector.
	MetricsTextfile string

	// Kafka run notifications, enabled when brokers are configured.
	KafkaBrokers     []string
	KafkaNotifyTopic string
	KafkaTimeout     time.Duration
	NotifyEnabled    bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	threshold, err := ParseThreshold(sharedcfg.EnvOrDefault("CALM_THRESHOLD", "3.0"))
	if err != nil {
		return nil, fmt.Errorf("CALM_THRESHOLD: %w", err)
	}

	kafkaTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("KAFKA_TIMEOUT", "10s"))
	if err != nil || kafkaTimeout <= 0 {
		return nil, errors.New("invalid KAFKA_TIMEOUT")
	}

	var brokers []string
	if raw := strings.TrimSpace(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "")); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		Threshold:        threshold,
		OutputPath:       sharedcfg.EnvOrDefault("OUTPUT_PATH", "output.nc"),
		LogLevel:         strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "text")),
		MetricsTextfile:  sharedcfg.EnvOrDefault("METRICS_TEXTFILE", ""),
		KafkaBrokers:     brokers,
		KafkaNotifyTopic: sharedcfg.EnvOrDefault("KAFKA_NOTIFY_TOPIC", "calm-streak-runs"),
		KafkaTimeout:     kafkaTimeout,
		NotifyEnabled:    len(brokers) > 0,
	}

	if cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH must not be empty")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	if cfg.NotifyEnabled && cfg.KafkaNotifyTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_NOTIFY_TOPIC is empty")
	}

	return cfg, nil
}

// ParseThreshold parses a wind speed threshold in m/s. Any finite value is
// accepted; NaN, infinities and malformed numbers are rejected, never coerced.
func ParseThreshold(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidThreshold, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", domain.ErrInvalidThreshold, s)
	}
	return v, nil
}
