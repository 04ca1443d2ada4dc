package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		APIBaseURL:                "http://localhost:8080",
		APITimeout:                30 * time.Second,
		ProgressStep:              10,
		OpportunityPageSize:       50,
		ContactPageSize:           25,
		SearchDebounce:            300 * time.Millisecond,
		NotificationTTL:           5 * time.Second,
		RedisURL:                  "redis://localhost:6379/0",
		Port:                      "3002",
		SessionTTL:                time.Hour,
		OTELSamplingRatio:         0.1,
		RateLimitPerSessionPerMin: 120,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CRM_API_BASE_URL", "https://crm.example.com/api")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://crm.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 10, cfg.ProgressStep)
	assert.Equal(t, 50, cfg.OpportunityPageSize)
	assert.Equal(t, 25, cfg.ContactPageSize)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 5*time.Second, cfg.NotificationTTL)
	assert.False(t, cfg.OTELEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PROGRESS_STEP", "20")
	t.Setenv("CONTACT_PAGE_SIZE", "10")
	t.Setenv("SEARCH_DEBOUNCE", "1s")
	t.Setenv("APP_ENV", "Production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.ProgressStep)
	assert.Equal(t, 10, cfg.ContactPageSize)
	assert.Equal(t, time.Second, cfg.SearchDebounce)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	t.Setenv("PROGRESS_STEP", "ten")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"relative base url", func(c *Config) { c.APIBaseURL = "/api" }, "CRM_API_BASE_URL"},
		{"unsupported scheme", func(c *Config) { c.APIBaseURL = "ftp://crm" }, "CRM_API_BASE_URL"},
		{"zero timeout", func(c *Config) { c.APITimeout = 0 }, "CRM_API_TIMEOUT"},
		{"step does not divide 100", func(c *Config) { c.ProgressStep = 30 }, "PROGRESS_STEP"},
		{"zero step", func(c *Config) { c.ProgressStep = 0 }, "PROGRESS_STEP"},
		{"zero page size", func(c *Config) { c.OpportunityPageSize = 0 }, "OPPORTUNITY_PAGE_SIZE"},
		{"zero contact page", func(c *Config) { c.ContactPageSize = 0 }, "CONTACT_PAGE_SIZE"},
		{"negative debounce", func(c *Config) { c.SearchDebounce = -time.Second }, "SEARCH_DEBOUNCE"},
		{"zero notification ttl", func(c *Config) { c.NotificationTTL = 0 }, "NOTIFICATION_TTL"},
		{"sampling ratio", func(c *Config) { c.OTELSamplingRatio = 1.5 }, "OTEL_SAMPLING_RATIO"},
		{"rate limit", func(c *Config) { c.RateLimitPerSessionPerMin = 0 }, "RATE_LIMIT_PER_SESSION_PER_MIN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateServer(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.ValidateServer())

	cfg.RedisURL = ""
	assert.Error(t, cfg.ValidateServer())
}

func TestConfig_GetAllowedOrigins(t *testing.T) {
	cfg := &Config{AllowedOrigins: " http://localhost:3000 ,,https://app.dopaflow.tn, "}

	assert.Equal(t, []string{"http://localhost:3000", "https://app.dopaflow.tn"}, cfg.GetAllowedOrigins())

	cfg.AllowedOrigins = "  ,  "
	assert.Empty(t, cfg.GetAllowedOrigins())
}
