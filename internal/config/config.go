// Package config loads casinod settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/multierr"

	"github.com/MJE43/pf-casino-engine/internal/games"
	"github.com/MJE43/pf-casino-engine/internal/logging"
	"github.com/MJE43/pf-casino-engine/internal/seeds"
)

// Config is the full process configuration.
type Config struct {
	HTTPAddr   string        `env:"CASINO_HTTP_ADDR" envDefault:"127.0.0.1:8088"`
	DBPath     string        `env:"CASINO_DB_PATH" envDefault:"casino.db"`
	SeedPeriod time.Duration `env:"CASINO_SEED_PERIOD" envDefault:"30m"`
	Disclosure string        `env:"CASINO_DISCLOSURE" envDefault:"rotation"`
	// APIToken guards the admin routes. Empty disables them.
	APIToken string `env:"CASINO_API_TOKEN"`

	Timeouts TimeoutConfig
	Log      LogConfig
}

// TimeoutConfig holds the per-variant inactivity timeouts.
type TimeoutConfig struct {
	Blackjack time.Duration `env:"CASINO_TIMEOUT_BLACKJACK" envDefault:"180s"`
	Mines     time.Duration `env:"CASINO_TIMEOUT_MINES" envDefault:"180s"`
	Roulette  time.Duration `env:"CASINO_TIMEOUT_ROULETTE" envDefault:"60s"`
	Coinflip  time.Duration `env:"CASINO_TIMEOUT_COINFLIP" envDefault:"60s"`
}

// LogConfig maps onto logging.Options.
type LogConfig struct {
	Level      string `env:"CASINO_LOG_LEVEL" envDefault:"info"`
	Format     string `env:"CASINO_LOG_FORMAT" envDefault:"text"`
	File       string `env:"CASINO_LOG_FILE"`
	MaxSizeMB  int    `env:"CASINO_LOG_MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"CASINO_LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"CASINO_LOG_MAX_AGE_DAYS" envDefault:"28"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment, applies overrides in order and validates
// the result.
func Load(overrides ...func(*Config)) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	for _, o := range overrides {
		o(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("CASINO_HTTP_ADDR is empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("CASINO_DB_PATH is empty"))
	}
	if c.SeedPeriod < time.Second {
		errs = append(errs, fmt.Errorf("CASINO_SEED_PERIOD %s is shorter than 1s", c.SeedPeriod))
	}
	if _, err := seeds.ParseDisclosureMode(c.Disclosure); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	for v, d := range c.Timeouts.ByVariant() {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s timeout must be positive, got %s", v, d))
		}
	}
	return multierr.Combine(errs...)
}

// ByVariant returns the timeouts keyed for the session registry.
func (t TimeoutConfig) ByVariant() map[games.Variant]time.Duration {
	return map[games.Variant]time.Duration{
		games.VariantBlackjack: t.Blackjack,
		games.VariantMines:     t.Mines,
		games.VariantRoulette:  t.Roulette,
		games.VariantCoinflip:  t.Coinflip,
	}
}

// DisclosureMode returns the parsed disclosure setting.
func (c Config) DisclosureMode() seeds.DisclosureMode {
	m, _ := seeds.ParseDisclosureMode(c.Disclosure)
	return m
}

// LoggingOptions adapts LogConfig for logging.New.
func (c Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}
