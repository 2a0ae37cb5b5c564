package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/dossier/internal/common"
	"github.com/Veraticus/dossier/internal/service"
)

// DefaultDatabasePath is used when database.path is unset.
const DefaultDatabasePath = "$HOME/.local/share/dossier/dossier.db"

// Config represents the complete application configuration.
type Config struct {
	Readiness ReadinessConfig `mapstructure:"readiness"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Criteria  CriteriaConfig  `mapstructure:"criteria"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RulesConfig points at an optional YAML file merged over the default
// category rules.
type RulesConfig struct {
	File string `mapstructure:"file"`
}

// CriteriaConfig points at an optional YAML file replacing the default award
// criteria.
type CriteriaConfig struct {
	File string `mapstructure:"file"`
}

// ReadinessConfig holds award thresholds.
type ReadinessConfig struct {
	Thresholds       map[string]int `mapstructure:"thresholds"`
	DefaultThreshold int            `mapstructure:"default_threshold"`
}

// IngestConfig controls the ingest pipeline and directory watcher.
type IngestConfig struct {
	Kind        string        `mapstructure:"kind"`
	Workers     int           `mapstructure:"workers"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds the optional textfile-collector output path.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// SetDefaults registers default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("rules.file", "")
	v.SetDefault("criteria.file", "")

	v.SetDefault("readiness.default_threshold", 5)
	v.SetDefault("readiness.thresholds", map[string]int{})

	v.SetDefault("ingest.kind", "auto")
	v.SetDefault("ingest.workers", 4)
	v.SetDefault("ingest.settle_delay", "500ms")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.textfile", "")
}

// Load unmarshals v into a Config, expands paths and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Rules.File = ExpandPath(cfg.Rules.File)
	cfg.Criteria.File = ExpandPath(cfg.Criteria.File)
	cfg.Metrics.Textfile = ExpandPath(cfg.Metrics.Textfile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", common.ErrMissingConfig)
	}

	if c.Readiness.DefaultThreshold < 1 {
		return fmt.Errorf("%w: readiness.default_threshold must be at least 1", common.ErrInvalidConfig)
	}
	for key, n := range c.Readiness.Thresholds {
		if n < 1 {
			return fmt.Errorf("%w: readiness.thresholds.%s must be at least 1", common.ErrInvalidConfig, key)
		}
	}

	if _, err := service.ParseUploadKind(c.Ingest.Kind); err != nil {
		return fmt.Errorf("%w: ingest.kind: %w", common.ErrInvalidConfig, err)
	}
	if c.Ingest.Workers < 1 {
		return fmt.Errorf("%w: ingest.workers must be at least 1", common.ErrInvalidConfig)
	}
	if c.Ingest.SettleDelay < 0 {
		return fmt.Errorf("%w: ingest.settle_delay cannot be negative", common.ErrInvalidConfig)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("%w: logging.level must be one of: debug, info, warn, error", common.ErrInvalidConfig)
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("%w: logging.format must be one of: console, json", common.ErrInvalidConfig)
	}

	return nil
}
