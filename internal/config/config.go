package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedBaseURL  string
	FeedFormat   string
	FeedLimit    int
	MinMagnitude string
	OrderBy      string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	CacheTTL       time.Duration // 0 disables the response cache
	RateLimit      float64       // outbound requests per second, 0 = unlimited
	ReadinessRetry time.Duration // delay between startup queries until the feed answers

	KafkaBrokers   []string // empty disables publishing
	KafkaSinkTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	connectTimeout, err := parsePositiveDuration("FEED_CONNECT_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	readTimeout, err := parsePositiveDuration("FEED_READ_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	readinessRetry, err := parsePositiveDuration("READINESS_RETRY_INTERVAL", "30s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("FEED_CACHE_TTL", "0s"))
	if err != nil || cacheTTL < 0 {
		return nil, errors.New("invalid FEED_CACHE_TTL")
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("FEED_RATE_LIMIT", "0"), 64)
	if err != nil || rateLimit < 0 {
		return nil, errors.New("invalid FEED_RATE_LIMIT")
	}

	limit, err := strconv.Atoi(sharedcfg.EnvOrDefault("FEED_LIMIT", "100"))
	if err != nil || limit < 1 || limit > domain.MaxLimit {
		return nil, fmt.Errorf("invalid FEED_LIMIT: must be between 1 and %d", domain.MaxLimit)
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		FeedBaseURL:  sharedcfg.EnvOrDefault("FEED_BASE_URL", "https://earthquake.usgs.gov/fdsnws/event/1/query"),
		FeedFormat:   sharedcfg.EnvOrDefault("FEED_FORMAT", "geojson"),
		FeedLimit:    limit,
		MinMagnitude: sharedcfg.EnvOrDefault("MIN_MAGNITUDE", "6"),
		OrderBy:      sharedcfg.EnvOrDefault("ORDER_BY", "magnitude"),

		ConnectTimeout: connectTimeout,
		ReadTimeout:    readTimeout,
		CacheTTL:       cacheTTL,
		RateLimit:      rateLimit,
		ReadinessRetry: readinessRetry,

		KafkaBrokers:   brokers,
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "earthquakes"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.FeedBaseURL == "" {
		return nil, errors.New("FEED_BASE_URL is required")
	}
	if _, err := domain.ParseMagnitude(cfg.MinMagnitude); err != nil {
		return nil, fmt.Errorf("invalid MIN_MAGNITUDE: %w", err)
	}
	if !domain.ValidOrderBy(cfg.OrderBy) {
		return nil, fmt.Errorf("invalid ORDER_BY %q", cfg.OrderBy)
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// QueryConfig returns the default feed query described by this config.
func (c *Config) QueryConfig() domain.QueryConfig {
	return domain.QueryConfig{
		BaseEndpoint: c.FeedBaseURL,
		MinMagnitude: c.MinMagnitude,
		OrderBy:      c.OrderBy,
		Limit:        c.FeedLimit,
		Format:       c.FeedFormat,
	}
}

// PublishEnabled reports whether enriched records should go to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
