package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8011, cfg.HTTPPort)
	assert.Equal(t, EngineElasticsearch, cfg.SearchEngine)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.ElasticsearchURLs)
	assert.Equal(t, "kibana_sample_data_ecommerce", cfg.ElasticsearchIndex)
	assert.True(t, cfg.CBEnabled)
	assert.False(t, cfg.OTelEnabled)
	assert.Equal(t, 1.0, cfg.OTelSampleRate)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Contains(t, cfg.PprofAllowedCIDRs, "10.0.0.0/8")
	assert.Zero(t, cfg.CacheMaxAgeSeconds)
	assert.Empty(t, cfg.LogFile)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(map[string]string{
		"ECOMMERCE_QUERY_HTTP_PORT": "9000",
		"SEARCH_ENGINE":             "memory",
		"MEMORY_SEED_FILE":          "testdata/orders.ndjson",
		"ELASTICSEARCH_URL":         "http://es1:9200,https://es2:9243",
		"OTEL_SAMPLE_RATE":          "0.1",
		"CACHE_MAX_AGE_SECONDS":     "30",
	})

	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, EngineMemory, cfg.SearchEngine)
	assert.Equal(t, "testdata/orders.ndjson", cfg.MemorySeedFile)
	assert.Equal(t, []string{"http://es1:9200", "https://es2:9243"}, cfg.ElasticsearchURLs)
	assert.Equal(t, 0.1, cfg.OTelSampleRate)
	assert.Equal(t, 30, cfg.CacheMaxAgeSeconds)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"port zero", map[string]string{"ECOMMERCE_QUERY_HTTP_PORT": "0"}, "invalid HTTP port"},
		{"port too high", map[string]string{"ECOMMERCE_QUERY_HTTP_PORT": "70000"}, "invalid HTTP port"},
		{"port not a number", map[string]string{"ECOMMERCE_QUERY_HTTP_PORT": "abc"}, "load ecommerce-query config"},
		{"unknown engine", map[string]string{"SEARCH_ENGINE": "solr"}, "invalid SEARCH_ENGINE"},
		{"bad es url", map[string]string{"ELASTICSEARCH_URL": "localhost"}, "invalid ELASTICSEARCH_URL"},
		{"sample rate too high", map[string]string{"OTEL_SAMPLE_RATE": "1.5"}, "invalid OTEL_SAMPLE_RATE"},
		{"sample rate negative", map[string]string{"OTEL_SAMPLE_RATE": "-0.1"}, "invalid OTEL_SAMPLE_RATE"},
		{"failure ratio zero", map[string]string{"CB_FAILURE_RATIO": "0"}, "invalid CB_FAILURE_RATIO"},
		{"negative cache age", map[string]string{"CACHE_MAX_AGE_SECONDS": "-1"}, "invalid CACHE_MAX_AGE_SECONDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := load(tt.env)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MemoryEngineSkipsElasticsearchChecks(t *testing.T) {
	cfg, err := load(map[string]string{
		"SEARCH_ENGINE":     "memory",
		"ELASTICSEARCH_URL": "not a url",
	})
	require.NoError(t, err)
	assert.Equal(t, EngineMemory, cfg.SearchEngine)
}

func TestLoad_ReportsEveryViolation(t *testing.T) {
	_, err := load(map[string]string{
		"ECOMMERCE_QUERY_HTTP_PORT": "0",
		"OTEL_SAMPLE_RATE":          "2",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
	assert.Contains(t, err.Error(), "invalid OTEL_SAMPLE_RATE")
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("ECOMMERCE_QUERY_HTTP_PORT", "8123")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.HTTPPort)
}

func TestCircuitBreaker(t *testing.T) {
	cfg, err := load(map[string]string{"CB_TIMEOUT_SECONDS": "10", "CB_MIN_REQUESTS": "3"})
	require.NoError(t, err)

	cb := cfg.CircuitBreaker()
	assert.Equal(t, "elasticsearch", cb.Name)
	assert.Equal(t, uint32(1), cb.MaxRequests)
	assert.Equal(t, 60*time.Second, cb.Interval)
	assert.Equal(t, 10*time.Second, cb.Timeout)
	assert.Equal(t, 0.5, cb.FailureRatio)
	assert.Equal(t, uint32(3), cb.MinRequests)
}
