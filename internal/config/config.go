package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// ModelParamsPath points at a YAML/JSON file of trained constants. Empty
	// means the shipped defaults.
	ModelParamsPath string

	SweepWorkers        int
	SweepYieldEvery     int
	SweepMaxCells       int
	PredictionCacheSize int

	// Kafka sweep pipeline configuration.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Green-space statistics service configuration.
	GreenspaceURL       string
	GreenspaceEnabled   bool
	GreenspaceTimeout   time.Duration
	GreenspaceCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	flushInterval, err := parsePositiveDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}

	greenspaceTimeout, err := parsePositiveDuration("GREENSPACE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parseIntInRange("BATCH_SIZE", 10, 1, 1000)
	if err != nil {
		return nil, err
	}

	workers, err := parseIntInRange("SWEEP_WORKERS", 1, 1, 256)
	if err != nil {
		return nil, err
	}

	yieldEvery, err := parseIntInRange("SWEEP_YIELD_EVERY", 10, 1, 100000)
	if err != nil {
		return nil, err
	}

	maxCells, err := parseIntInRange("SWEEP_MAX_CELLS", 10000, 1, 1000000)
	if err != nil {
		return nil, err
	}

	greenspaceURL := strings.TrimRight(os.Getenv("GREENSPACE_URL"), "/")

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		ModelParamsPath: os.Getenv("MODEL_PARAMS_PATH"),

		SweepWorkers:        workers,
		SweepYieldEvery:     yieldEvery,
		SweepMaxCells:       maxCells,
		PredictionCacheSize: parseCacheSize("PREDICTION_CACHE_SIZE", 1000),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "sweep-requests"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "sweep-results"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "heat-response"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		GreenspaceURL:       greenspaceURL,
		GreenspaceEnabled:   greenspaceURL != "",
		GreenspaceTimeout:   greenspaceTimeout,
		GreenspaceCacheSize: parseCacheSize("GREENSPACE_CACHE_SIZE", 100),
	}
	if v := os.Getenv("GREENSPACE_ENABLED"); v != "" {
		cfg.GreenspaceEnabled = v == "true"
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	if cfg.GreenspaceEnabled && cfg.GreenspaceURL == "" {
		return nil, errors.New("GREENSPACE_ENABLED is true but GREENSPACE_URL is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntInRange(key string, fallback, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}

func parseCacheSize(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
