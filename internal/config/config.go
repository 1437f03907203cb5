package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/ecommerce-query/pkg/config"
	"github.com/utafrali/ecommerce-query/pkg/httpclient"
)

const (
	EngineElasticsearch = "elasticsearch"
	EngineMemory        = "memory"
)

// Config holds all configuration for the ecommerce query service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Optional rotating log file, teed with stdout.
	LogFile           string `env:"LOG_FILE"`
	LogFileMaxSizeMB  int    `env:"LOG_FILE_MAX_SIZE_MB" envDefault:"100"`
	LogFileMaxBackups int    `env:"LOG_FILE_MAX_BACKUPS" envDefault:"5"`
	LogFileMaxAgeDays int    `env:"LOG_FILE_MAX_AGE_DAYS" envDefault:"28"`

	// HTTP server
	HTTPPort int `env:"ECOMMERCE_QUERY_HTTP_PORT" envDefault:"8011"`

	// Search engine selection (elasticsearch or memory)
	SearchEngine string `env:"SEARCH_ENGINE" envDefault:"elasticsearch"`

	// Elasticsearch
	ElasticsearchURLs     []string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200" envSeparator:","`
	ElasticsearchUsername string   `env:"ELASTICSEARCH_USERNAME"`
	ElasticsearchPassword string   `env:"ELASTICSEARCH_PASSWORD"`
	ElasticsearchIndex    string   `env:"ELASTICSEARCH_INDEX" envDefault:"kibana_sample_data_ecommerce"`

	// In-memory engine fixtures (JSON array or NDJSON)
	MemorySeedFile string `env:"MEMORY_SEED_FILE"`

	// Circuit breaker around the Elasticsearch transport
	CBEnabled         bool    `env:"CB_ENABLED" envDefault:"true"`
	CBMaxRequests     uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBIntervalSeconds int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeoutSeconds  int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio    float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests     uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Tracing
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// HTTP surface
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128,10.0.0.0/8,172.16.0.0/12,192.168.0.0/16" envSeparator:","`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	CacheMaxAgeSeconds int      `env:"CACHE_MAX_AGE_SECONDS" envDefault:"0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return load(nil)
}

func load(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, environ); err != nil {
		return nil, fmt.Errorf("load ecommerce-query config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants and reports all violations at once.
func (c *Config) validate() error {
	var errs []error

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}

	switch c.SearchEngine {
	case EngineElasticsearch:
		if len(c.ElasticsearchURLs) == 0 {
			errs = append(errs, errors.New("ELASTICSEARCH_URL is required"))
		}
		for _, raw := range c.ElasticsearchURLs {
			u, err := url.Parse(raw)
			if err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, fmt.Errorf("invalid ELASTICSEARCH_URL entry: %q", raw))
			}
		}
		if c.ElasticsearchIndex == "" {
			errs = append(errs, errors.New("ELASTICSEARCH_INDEX is required"))
		}
	case EngineMemory:
	default:
		errs = append(errs, fmt.Errorf("invalid SEARCH_ENGINE %q: must be %s or %s", c.SearchEngine, EngineElasticsearch, EngineMemory))
	}

	if c.OTelSampleRate < 0 || c.OTelSampleRate > 1 {
		errs = append(errs, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %v (must be in [0,1])", c.OTelSampleRate))
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		errs = append(errs, fmt.Errorf("invalid CB_FAILURE_RATIO: %v (must be in (0,1])", c.CBFailureRatio))
	}
	if c.CBTimeoutSeconds < 0 || c.CBIntervalSeconds < 0 {
		errs = append(errs, errors.New("circuit breaker durations must not be negative"))
	}
	if c.CacheMaxAgeSeconds < 0 {
		errs = append(errs, fmt.Errorf("invalid CACHE_MAX_AGE_SECONDS: %d", c.CacheMaxAgeSeconds))
	}

	return errors.Join(errs...)
}

// CircuitBreaker converts the CB_* settings for the Elasticsearch transport.
func (c *Config) CircuitBreaker() httpclient.CircuitBreakerConfig {
	return httpclient.CircuitBreakerConfig{
		Name:         "elasticsearch",
		MaxRequests:  c.CBMaxRequests,
		Interval:     time.Duration(c.CBIntervalSeconds) * time.Second,
		Timeout:      time.Duration(c.CBTimeoutSeconds) * time.Second,
		FailureRatio: c.CBFailureRatio,
		MinRequests:  c.CBMinRequests,
	}
}
