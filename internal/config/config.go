package config

import (
	"fmt"
	"strings"

	pkgconfig "github.com/cipr/storefront/pkg/config"
)

// Config holds all configuration for the storefront daemon.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP facade
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Commerce backend
	BackendBaseURL     string  `env:"BACKEND_BASE_URL" envDefault:"http://localhost:8000/api"`
	BackendTimeoutSecs int     `env:"BACKEND_TIMEOUT_SECONDS" envDefault:"30"`
	BackendMaxRetries  int     `env:"BACKEND_MAX_RETRIES" envDefault:"3"`
	BreakerEnabled     bool    `env:"BACKEND_BREAKER_ENABLED" envDefault:"true"`
	BreakerRatio       float64 `env:"BACKEND_BREAKER_FAILURE_RATIO" envDefault:"0.5"`

	// Redis (durable token slot). Disabled falls back to in-memory storage,
	// losing the session on restart.
	RedisEnabled bool   `env:"REDIS_ENABLED" envDefault:"true"`
	RedisHost    string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort    int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass    string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB      int    `env:"REDIS_DB" envDefault:"0"`

	// SessionKey is the fixed key the bearer token is persisted under.
	SessionKey string `env:"SESSION_KEY" envDefault:"storefront"`

	// SessionTTLHours bounds how long a persisted token is kept.
	SessionTTLHours int `env:"SESSION_TTL_HOURS" envDefault:"72"`

	// Kafka (storefront events; empty disables publishing)
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"storefront.events"`
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`

	// Rate limiting on the facade
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// CORS
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	TracingEnabled     bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint    string  `env:"TRACING_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate  float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
	CatalogCacheMaxAge int     `env:"CATALOG_CACHE_MAX_AGE" envDefault:"60"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !strings.HasPrefix(c.BackendBaseURL, "http://") && !strings.HasPrefix(c.BackendBaseURL, "https://") {
		return fmt.Errorf("invalid backend base URL: %s", c.BackendBaseURL)
	}
	if c.BreakerRatio <= 0 || c.BreakerRatio > 1 {
		return fmt.Errorf("invalid breaker failure ratio: %f", c.BreakerRatio)
	}
	return nil
}
