package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Port    int           `env:"PORT" envDefault:"8011"`
	URLs    []string      `env:"URLS" envSeparator:"," envDefault:"http://localhost:9200"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

func TestLoadFrom_Defaults(t *testing.T) {
	var cfg sample
	require.NoError(t, LoadFrom(&cfg, map[string]string{}))

	assert.Equal(t, 8011, cfg.Port)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.URLs)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoadFrom_Overrides(t *testing.T) {
	var cfg sample
	require.NoError(t, LoadFrom(&cfg, map[string]string{
		"PORT": "9000",
		"URLS": "http://es1:9200,http://es2:9200",
	}))

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.URLs)
}

func TestLoadFrom_BadValue(t *testing.T) {
	var cfg sample
	err := LoadFrom(&cfg, map[string]string{"PORT": "not-a-port"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("PORT", "8123")
	var cfg sample
	require.NoError(t, Load(&cfg))
	assert.Equal(t, 8123, cfg.Port)
}
