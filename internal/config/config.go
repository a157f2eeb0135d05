package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/roomquest.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"web/dist"`

	// WorldPack points at a TOML world file; empty plays the built-in world.
	WorldPack string `env:"WORLD_PACK"`

	// QuestionTimeLimit is how long a presented question stays open.
	QuestionTimeLimit time.Duration `env:"QUESTION_TIME_LIMIT" envDefault:"30s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
