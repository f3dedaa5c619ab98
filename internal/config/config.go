// Package config provides configuration for the relay and advisor binaries.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Relay holds the relay service configuration.
type Relay struct {
	Port            string  `env:"PORT" envDefault:"8787"`
	APIKey          string  `env:"OPENAI_API_KEY"`
	BaseURL         string  `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1/"`
	Model           string  `env:"RELAY_MODEL" envDefault:"gpt-4.1"`
	Temperature     float64 `env:"RELAY_TEMPERATURE" envDefault:"0.4"`
	MaxOutputTokens int64   `env:"RELAY_MAX_OUTPUT_TOKENS" envDefault:"600"`
	MaxBodyBytes    int64   `env:"RELAY_MAX_BODY_BYTES" envDefault:"1048576"`
	RateLimit       RateLimit
}

// RateLimit controls per-client throttling of the relay. Requests <= 0
// disables it.
type RateLimit struct {
	Requests int           `env:"RELAY_RATE_LIMIT_REQUESTS" envDefault:"0"`
	Window   time.Duration `env:"RELAY_RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// Enabled reports whether rate limiting is on.
func (r RateLimit) Enabled() bool {
	return r.Requests > 0
}

// Advisor holds the terminal advisor configuration.
type Advisor struct {
	RelayURL string `env:"ADVISOR_RELAY_URL"`
	Catalog  string `env:"ADVISOR_CATALOG" envDefault:"http://localhost:8787/products.json"`
	DBPath   string `env:"ADVISOR_DB_PATH" envDefault:"./data/advisor.db"`
}

// LoadRelay reads relay configuration from environ, or from the process
// environment when environ is nil.
func LoadRelay(environ map[string]string) (*Relay, error) {
	cfg := &Relay{}
	if err := env.Parse(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse relay environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Relay) Validate() error {
	if c.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.Model == "" {
		return errors.New("RELAY_MODEL cannot be empty")
	}
	if c.MaxOutputTokens <= 0 {
		return errors.New("RELAY_MAX_OUTPUT_TOKENS must be > 0")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("RELAY_MAX_BODY_BYTES must be > 0")
	}
	if c.RateLimit.Enabled() && c.RateLimit.Window <= 0 {
		return errors.New("RELAY_RATE_LIMIT_WINDOW must be > 0")
	}
	return nil
}

// LoadAdvisor reads advisor configuration from environ, or from the process
// environment when environ is nil. The relay URL is checked when the first
// reply is requested, not here.
func LoadAdvisor(environ map[string]string) (*Advisor, error) {
	cfg := &Advisor{}
	if err := env.Parse(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse advisor environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Advisor) Validate() error {
	if c.Catalog == "" {
		return errors.New("ADVISOR_CATALOG cannot be empty")
	}
	if c.DBPath == "" {
		return errors.New("ADVISOR_DB_PATH cannot be empty")
	}
	return nil
}
