package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete configuration of the azoth tools.
type Config struct {
	Rules   RulesConfig   `mapstructure:"rules"`
	Logging LoggingConfig `mapstructure:"logging"`
	Relay   RelayConfig   `mapstructure:"relay"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Replay  ReplayConfig  `mapstructure:"replay"`
}

// RulesConfig tunes the game rules.
type RulesConfig struct {
	LifeCards          int  `mapstructure:"life_cards"`
	HandSize           int  `mapstructure:"hand_size"`
	LogCapacity        int  `mapstructure:"log_capacity"`
	MaxResolutionDepth int  `mapstructure:"max_resolution_depth"`
	PowerDamage        bool `mapstructure:"power_damage"`
	// Seed fixes shuffles; 0 picks a random seed.
	Seed     uint64 `mapstructure:"seed"`
	MaxTurns int    `mapstructure:"max_turns"`
}

// LoggingConfig selects the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RelayConfig configures the spectator WebSocket relay.
type RelayConfig struct {
	Address   string        `mapstructure:"address"`
	TurnDelay time.Duration `mapstructure:"turn_delay"`
}

// CatalogConfig says where card definitions and decks come from.
type CatalogConfig struct {
	// Source is "yaml" or "postgres".
	Source      string `mapstructure:"source"`
	Path        string `mapstructure:"path"`
	DatabaseURL string `mapstructure:"database_url"`
}

// ReplayConfig enables replay recording.
type ReplayConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
}

// Load reads configuration from path (YAML), applying defaults and AZOTH_*
// environment overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AZOTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rules.life_cards", 4)
	v.SetDefault("rules.hand_size", 7)
	v.SetDefault("rules.log_capacity", 100)
	v.SetDefault("rules.max_resolution_depth", 10)
	v.SetDefault("rules.power_damage", false)
	v.SetDefault("rules.seed", 0)
	v.SetDefault("rules.max_turns", 50)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("relay.address", ":8080")
	v.SetDefault("relay.turn_delay", "500ms")

	v.SetDefault("catalog.source", "yaml")
	v.SetDefault("catalog.path", "data/cards.yaml")
	v.SetDefault("catalog.database_url", "")

	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.directory", "replays")
}

// Validate checks the configuration for values the engine cannot use.
func (c *Config) Validate() error {
	var errs []error
	if c.Rules.LifeCards < 1 {
		errs = append(errs, fmt.Errorf("rules.life_cards must be at least 1, got %d", c.Rules.LifeCards))
	}
	if c.Rules.HandSize < 0 {
		errs = append(errs, fmt.Errorf("rules.hand_size must not be negative, got %d", c.Rules.HandSize))
	}
	if c.Rules.LogCapacity < 1 {
		errs = append(errs, fmt.Errorf("rules.log_capacity must be at least 1, got %d", c.Rules.LogCapacity))
	}
	if c.Rules.MaxTurns < 1 {
		errs = append(errs, fmt.Errorf("rules.max_turns must be at least 1, got %d", c.Rules.MaxTurns))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not json or console", c.Logging.Format))
	}

	switch c.Catalog.Source {
	case "yaml":
		if c.Catalog.Path == "" {
			errs = append(errs, errors.New("catalog.path is required for the yaml source"))
		}
	case "postgres":
		if c.Catalog.DatabaseURL == "" {
			errs = append(errs, errors.New("catalog.database_url is required for the postgres source"))
		}
	default:
		errs = append(errs, fmt.Errorf("catalog.source %q is not yaml or postgres", c.Catalog.Source))
	}

	if c.Relay.TurnDelay < 0 {
		errs = append(errs, errors.New("relay.turn_delay must not be negative"))
	}
	return errors.Join(errs...)
}
