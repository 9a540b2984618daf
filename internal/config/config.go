package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"` // sqlite|postgres
	DBPath      string `envconfig:"DB_PATH" default:"./data/reminders.db"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	TZName         string        `envconfig:"TZ_NAME" default:"Europe/Paris"`
	PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"1m"`
	AckWindow      time.Duration `envconfig:"ACK_WINDOW" default:"90m"`
	PostponeWindow time.Duration `envconfig:"POSTPONE_WINDOW" default:"90m"`
	SendTimeout    time.Duration `envconfig:"SEND_TIMEOUT" default:"10s"`
	SendRate       int           `envconfig:"SEND_RATE" default:"25"` // messages per second
	VoteURL        string        `envconfig:"VOTE_URL" default:"https://nationsglory.fr/vote"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"` // healthz + metrics
}

// Load reads an optional .env file, then environment variables into Config.
// Variables already set in the environment win over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if _, err := cfg.Location(); err != nil {
		return cfg, fmt.Errorf("TZ_NAME: %w", err)
	}
	if cfg.PollInterval < time.Second {
		return cfg, fmt.Errorf("POLL_INTERVAL must be at least 1s, got %s", cfg.PollInterval)
	}
	if cfg.AckWindow < time.Minute {
		return cfg, fmt.Errorf("ACK_WINDOW must be at least 1m, got %s", cfg.AckWindow)
	}
	if cfg.PostponeWindow < time.Minute {
		return cfg, fmt.Errorf("POSTPONE_WINDOW must be at least 1m, got %s", cfg.PostponeWindow)
	}
	return cfg, nil
}

// Location resolves TZName.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TZName)
}
