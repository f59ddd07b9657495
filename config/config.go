package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment. AllowedOrigin is the single
// cross-origin source accepted for websocket upgrades; empty allows any
// origin, for local development.
type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &c, nil
}
