package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all batch settings, populated from environment variables.
// CLI flags override the per-run values (delay, paths) after Load.
type Config struct {
	LogLevel  string
	LogFormat string

	// HTTPAddr enables the health/metrics server when non-empty. Batches
	// are short-lived, so it is off by default.
	HTTPAddr string

	// UserAgent identifies this tool to Nominatim and api.weather.gov,
	// both of which require a descriptive User-Agent.
	UserAgent string

	GeocodeTimeout time.Duration
	ZoneTimeout    time.Duration
	AlertsTimeout  time.Duration
	FEMATimeout    time.Duration

	// RequestDelay throttles rows that issue geocoding calls; FEMADelay
	// throttles per-state FEMA queries.
	RequestDelay time.Duration
	FEMADelay    time.Duration

	// Google Maps paid fallback tier. Enabled defaults to key presence.
	GoogleMapsAPIKey  string
	GoogleMapsEnabled bool

	// Optional Kafka sink for enriched records.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	// IndexPath is the SQLite incremental-index file.
	IndexPath string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	geocodeTimeout, err := parseDurationEnv("GEOCODE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	zoneTimeout, err := parseDurationEnv("ZONE_LOOKUP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	alertsTimeout, err := parseDurationEnv("ALERTS_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	femaTimeout, err := parseDurationEnv("FEMA_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	requestDelay, err := parseDurationEnv("REQUEST_DELAY", "1s")
	if err != nil {
		return nil, err
	}
	femaDelay, err := parseDurationEnv("FEMA_DELAY", "500ms")
	if err != nil {
		return nil, err
	}

	gmapsKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	gmapsEnabled := gmapsKey != ""
	if v := os.Getenv("GOOGLE_MAPS_ENABLED"); v != "" {
		gmapsEnabled = v == "true"
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))

	cfg := &Config{
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "text"),
		HTTPAddr:  os.Getenv("HTTP_ADDR"),
		UserAgent: envOrDefault("HTTP_USER_AGENT", "org-hazard-etl/1.0"),

		GeocodeTimeout: geocodeTimeout,
		ZoneTimeout:    zoneTimeout,
		AlertsTimeout:  alertsTimeout,
		FEMATimeout:    femaTimeout,
		RequestDelay:   requestDelay,
		FEMADelay:      femaDelay,

		GoogleMapsAPIKey:  gmapsKey,
		GoogleMapsEnabled: gmapsEnabled,

		KafkaEnabled:   len(brokers) > 0,
		KafkaBrokers:   brokers,
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "org-hazard-enriched"),

		IndexPath: envOrDefault("INDEX_PATH", "geocode_index.db"),
	}

	if cfg.GoogleMapsEnabled && cfg.GoogleMapsAPIKey == "" {
		return nil, errors.New("GOOGLE_MAPS_ENABLED is true but GOOGLE_MAPS_API_KEY is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_SINK_TOPIC is empty")
	}
	if cfg.UserAgent == "" {
		return nil, errors.New("HTTP_USER_AGENT must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
