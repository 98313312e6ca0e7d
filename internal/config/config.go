// Package config loads the application configuration from, in order of
// precedence: command-line flags, MEMORANK_ environment variables, a YAML
// config file, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/jagzao/memorank/internal/domain"
	"github.com/jagzao/memorank/internal/sm2"
)

// Config is the full application configuration.
type Config struct {
	ListenAddr string   `koanf:"listen_addr" validate:"required"`
	DBPath     string   `koanf:"db_path" validate:"required"`
	LogLevel   string   `koanf:"log_level" validate:"oneof=debug info warn error"`
	ReposDir   string   `koanf:"repos_dir"`
	Sources    []string `koanf:"sources"`

	Session Session `koanf:"session"`
	Cache   Cache   `koanf:"cache"`

	// ReferenceResponseMs overrides the expected answer time per
	// difficulty, keyed by difficulty name.
	ReferenceResponseMs map[string]int64 `koanf:"reference_response_ms" validate:"dive,gt=0"`
}

// Session controls study queue composition.
type Session struct {
	MaxCards   int  `koanf:"max_cards" validate:"gte=1"`
	ExcludeNew bool `koanf:"exclude_new"`
}

// Cache controls the scheduling result cache.
type Cache struct {
	Disabled   bool `koanf:"disabled"`
	TTLSeconds int  `koanf:"ttl_seconds" validate:"gte=1"`
	MaxEntries int  `koanf:"max_entries" validate:"gte=1"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		DBPath:     "memorank.db",
		LogLevel:   "info",
		ReposDir:   "repos",
		Session: Session{
			MaxCards: 20,
		},
		Cache: Cache{
			TTLSeconds: 60,
			MaxEntries: 128,
		},
	}
}

// Load builds the configuration by layering the config file, environment
// variables, and flags over the defaults, then validating the result. A
// missing config file is only an error when the path was set explicitly.
func Load(configFile string, explicit bool, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		err := k.Load(file.Provider(configFile), yaml.Parser())
		if err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
			return Config{}, fmt.Errorf("loading config file %s: %w", configFile, err)
		}
	}

	// MEMORANK_SESSION__MAX_CARDS=10 becomes session.max_cards.
	err := k.Load(env.ProviderWithValue("MEMORANK_", ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, "MEMORANK_"))
		return strings.ReplaceAll(key, "__", "."), value
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("loading flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	for name := range cfg.ReferenceResponseMs {
		if _, err := domain.ParseDifficulty(name); err != nil {
			return Config{}, fmt.Errorf("invalid config: reference_response_ms: %w", err)
		}
	}

	return cfg, nil
}

// SM2Params converts the configured reference response times into
// scheduling parameters, keeping the defaults for difficulties that are
// not overridden.
func (c Config) SM2Params() sm2.Params {
	params := sm2.DefaultParams()
	for name, ms := range c.ReferenceResponseMs {
		difficulty, err := domain.ParseDifficulty(name)
		if err != nil {
			continue // rejected in Load
		}
		params.ReferenceResponseMs[difficulty] = ms
	}
	return params
}

// CacheTTL returns the configured cache TTL as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// SlogLevel maps the configured log level onto slog's levels.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
