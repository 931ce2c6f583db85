package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	t.Setenv("APP_ENVIRONMENT", "sandbox")
	t.Setenv("APP_SERVICE_NAME", "svc-markets-replica")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Init()
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "sandbox", cfg.App.Env.Name)
	assert.Equal(t, "svc-markets-replica", cfg.App.ServiceName)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestInit_DatabaseOverrides(t *testing.T) {
	t.Setenv("MONGODB_HOST", "mongo-primary")
	t.Setenv("MONGODB_PORT", "27018")
	t.Setenv("MONGODB_COLLECTION", "feiras")

	cfg, err := Init()
	assert.NoError(t, err)

	assert.Equal(t, "mongodb://mongo-primary:27018", cfg.Database.ConnectionURI())
	assert.Equal(t, "feiras", cfg.Database.Collection)
	assert.Equal(t, "markets", cfg.Database.Database)
}

func TestInit_ExplicitURIWins(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://replica-a:27017,replica-b:27017/?replicaSet=rs0")
	t.Setenv("MONGODB_HOST", "ignored")

	cfg, err := Init()
	assert.NoError(t, err)
	assert.Equal(t, "mongodb://replica-a:27017,replica-b:27017/?replicaSet=rs0", cfg.Database.ConnectionURI())
}

func TestInit_RejectsCompressionLevel(t *testing.T) {
	t.Setenv("COMPRESSION_LEVEL", "12")

	cfg, err := Init()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestInit_DefaultValues(t *testing.T) {
	cfg, err := Init()
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// App defaults
	assert.Equal(t, "svc-markets", cfg.App.ServiceName)
	assert.Equal(t, "v1", cfg.App.APIVersion)

	// HTTPServer defaults
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPServer.Address())
	assert.Equal(t, 30*time.Second, cfg.HTTPServer.ShutdownTimeout)

	// Database defaults
	assert.Equal(t, "mongodb://mongodb:27017", cfg.Database.ConnectionURI())
	assert.Equal(t, "markets", cfg.Database.Database)
	assert.Equal(t, "markets", cfg.Database.Collection)

	// Cache defaults
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.MarketTTL)

	// Vault defaults
	assert.False(t, cfg.SecretsStorage.Enabled)
	assert.Equal(t, "http://vault:8200", cfg.SecretsStorage.Address)
	assert.Equal(t, "token", cfg.SecretsStorage.AuthMethod)
	assert.Equal(t, "svc-markets", cfg.SecretsStorage.MountPath)

	// Rate limiting skips probes
	assert.Contains(t, cfg.RateLimiting.SkipPaths, "/v1/readiness")
}

func TestGetEnvironment(t *testing.T) {
	cases := []struct {
		name     string
		env      string
		expected int
	}{
		{
			name:     "production",
			env:      "production",
			expected: Production,
		},
		{
			name:     "prod shorthand",
			env:      "prod",
			expected: Production,
		},
		{
			name:     "staging",
			env:      "staging",
			expected: Staging,
		},
		{
			name:     "stg shorthand",
			env:      "stg",
			expected: Staging,
		},
		{
			name:     "sandbox",
			env:      "sandbox",
			expected: Sandbox,
		},
		{
			name:     "sbx shorthand",
			env:      "sbx",
			expected: Sandbox,
		},
		{
			name:     "development default",
			env:      "development",
			expected: Development,
		},
		{
			name:     "unknown defaults to development",
			env:      "unknown",
			expected: Development,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &ServiceConfig{
				App: App{Env: Environment{Name: tc.env}},
			}

			assert.Equal(t, tc.expected, cfg.GetEnvironment())
		})
	}
}

func TestIsProduction(t *testing.T) {
	cases := []struct {
		name     string
		env      string
		expected bool
	}{
		{
			name:     "production returns true",
			env:      "production",
			expected: true,
		},
		{
			name:     "prod returns true",
			env:      "prod",
			expected: true,
		},
		{
			name:     "staging returns false",
			env:      "staging",
			expected: false,
		},
		{
			name:     "development returns false",
			env:      "development",
			expected: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &ServiceConfig{
				App: App{Env: Environment{Name: tc.env}},
			}

			assert.Equal(t, tc.expected, cfg.IsProduction())
		})
	}
}
