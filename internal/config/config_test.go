package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultFeedURL = "https://earthquake.usgs.gov/fdsnws/event/1/query"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultFeedURL, cfg.FeedBaseURL)
	assert.Equal(t, "geojson", cfg.FeedFormat)
	assert.Equal(t, 100, cfg.FeedLimit)
	assert.Equal(t, "6", cfg.MinMagnitude)
	assert.Equal(t, "magnitude", cfg.OrderBy)
	assert.Equal(t, 15*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
	assert.Zero(t, cfg.CacheTTL)
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.ReadinessRetry)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.PublishEnabled())
	assert.Equal(t, "earthquakes", cfg.KafkaSinkTopic)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("FEED_BASE_URL", "http://localhost:9000/query")
	t.Setenv("FEED_LIMIT", "250")
	t.Setenv("MIN_MAGNITUDE", "4.5")
	t.Setenv("ORDER_BY", "time")
	t.Setenv("FEED_CONNECT_TIMEOUT", "3s")
	t.Setenv("FEED_READ_TIMEOUT", "2s")
	t.Setenv("FEED_CACHE_TTL", "1m")
	t.Setenv("FEED_RATE_LIMIT", "0.5")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "quakes")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/query", cfg.FeedBaseURL)
	assert.Equal(t, 250, cfg.FeedLimit)
	assert.Equal(t, "4.5", cfg.MinMagnitude)
	assert.Equal(t, "time", cfg.OrderBy)
	assert.Equal(t, 3*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.InDelta(t, 0.5, cfg.RateLimit, 1e-9)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.PublishEnabled())
	assert.Equal(t, "quakes", cfg.KafkaSinkTopic)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestConfig_QueryConfig(t *testing.T) {
	t.Setenv("MIN_MAGNITUDE", "3")
	t.Setenv("ORDER_BY", "time-asc")
	t.Setenv("FEED_LIMIT", "20")

	cfg, err := Load()
	require.NoError(t, err)

	q := cfg.QueryConfig()
	assert.Equal(t, defaultFeedURL, q.BaseEndpoint)
	assert.Equal(t, "3", q.MinMagnitude)
	assert.Equal(t, "time-asc", q.OrderBy)
	assert.Equal(t, 20, q.Limit)
	assert.Equal(t, "geojson", q.Format)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"FEED_CONNECT_TIMEOUT", "bad"},
		{"FEED_CONNECT_TIMEOUT", "0s"},
		{"FEED_READ_TIMEOUT", "-1s"},
		{"FEED_CACHE_TTL", "soon"},
		{"FEED_CACHE_TTL", "-5s"},
		{"FEED_RATE_LIMIT", "fast"},
		{"FEED_RATE_LIMIT", "-1"},
		{"FEED_LIMIT", "0"},
		{"FEED_LIMIT", "20001"},
		{"FEED_LIMIT", "many"},
		{"MIN_MAGNITUDE", "big"},
		{"MIN_MAGNITUDE", "NaN"},
		{"MIN_MAGNITUDE", "Inf"},
		{"MIN_MAGNITUDE", "-infinity"},
		{"READINESS_RETRY_INTERVAL", "0s"},
		{"READINESS_RETRY_INTERVAL", "later"},
		{"ORDER_BY", "depth"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
