package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the complete engine configuration.
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Host   string `envconfig:"HOST" default:"0.0.0.0"`
	Port   int    `envconfig:"PORT" default:"8080"`

	MetricsEnabled bool     `envconfig:"METRICS_ENABLED" default:"true"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// Authoritative vote backend and realtime feed endpoints.
	VoteBackendURL string `envconfig:"VOTE_BACKEND_URL" default:"http://localhost:9090"`
	RealtimeURL    string `envconfig:"REALTIME_URL"`

	// Bound on the remote submission call. Treated as a network failure
	// when exceeded.
	SubmitTimeout time.Duration `envconfig:"SUBMIT_TIMEOUT" default:"5s"`

	// Minimum gap between accepted votes per (subject, actor).
	VoteMinInterval time.Duration `envconfig:"VOTE_MIN_INTERVAL" default:"1s"`

	FuzzEnabled bool `envconfig:"SCORE_FUZZ_ENABLED" default:"true"`
}

// Load reads configuration from the environment, probing the usual .env
// locations first so local runs behave like deployed ones.
func Load() (*Config, error) {
	for _, location := range []string{".env", "../../.env"} {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
