package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	// Environment
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CRM backend
	APIBaseURL string        `env:"CRM_API_BASE_URL" envDefault:"http://localhost:8080"`
	APIToken   string        `env:"CRM_API_TOKEN"`                                 // static bearer token, CLI only
	TokenFile  string        `env:"CRM_TOKEN_FILE" envDefault:"~/.dopaflow/token"` // persisted login token
	APITimeout time.Duration `env:"CRM_API_TIMEOUT" envDefault:"30s"`

	// Board (defaults mirror the web client)
	ProgressStep        int           `env:"PROGRESS_STEP" envDefault:"10"`
	OpportunityPageSize int           `env:"OPPORTUNITY_PAGE_SIZE" envDefault:"50"`
	ContactPageSize     int           `env:"CONTACT_PAGE_SIZE" envDefault:"25"`
	SearchDebounce      time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"300ms"`
	NotificationTTL     time.Duration `env:"NOTIFICATION_TTL" envDefault:"5s"`

	// Redis (BFF sessions and rate limiting)
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Server
	Port           string        `env:"PORT" envDefault:"3002"`
	AllowedOrigins string        `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"` // CSV
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	MetricsToken   string        `env:"METRICS_TOKEN"`

	// Rate Limiting
	RateLimitPerSessionPerMin int `env:"RATE_LIMIT_PER_SESSION_PER_MIN" envDefault:"120"`

	// OpenTelemetry
	OTELEnabled          bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELExporterEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTELServiceName      string  `env:"OTEL_SERVICE_NAME" envDefault:"dopaflow-board"`
	OTELSamplingRatio    float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"0.1"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CRM_API_BASE_URL must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("CRM_API_BASE_URL must use http or https")
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("CRM_API_TIMEOUT must be positive")
	}

	if c.ProgressStep <= 0 || c.ProgressStep > 100 || 100%c.ProgressStep != 0 {
		return fmt.Errorf("PROGRESS_STEP must divide 100")
	}

	if c.OpportunityPageSize <= 0 {
		return fmt.Errorf("OPPORTUNITY_PAGE_SIZE must be positive")
	}

	if c.ContactPageSize <= 0 {
		return fmt.Errorf("CONTACT_PAGE_SIZE must be positive")
	}

	if c.SearchDebounce < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must be non-negative")
	}

	if c.NotificationTTL <= 0 {
		return fmt.Errorf("NOTIFICATION_TTL must be positive")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if c.OTELSamplingRatio < 0 || c.OTELSamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be between 0 and 1")
	}

	if c.RateLimitPerSessionPerMin <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SESSION_PER_MIN must be positive")
	}

	return nil
}

// ValidateServer adds the checks only the BFF needs.
func (c *Config) ValidateServer() error {
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// GetAllowedOrigins returns the CORS origins as a list
func (c *Config) GetAllowedOrigins() []string {
	origins := strings.Split(c.AllowedOrigins, ",")
	result := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
