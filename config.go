package depot

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the capacity hints and diagnostics switches of a World.
// Capacity hints that are zero or negative fall back to their defaults.
type Config struct {
	EntitiesCapacity         int           `toml:"entities_capacity" yaml:"entities_capacity"`
	FiltersCapacity          int           `toml:"filters_capacity" yaml:"filters_capacity"`
	PoolsCapacity            int           `toml:"pools_capacity" yaml:"pools_capacity"`
	EntityComponentsCapacity int           `toml:"entity_components_capacity" yaml:"entity_components_capacity"`
	FilterEntitiesCapacity   int           `toml:"filter_entities_capacity" yaml:"filter_entities_capacity"`
	PoolCapacity             int           `toml:"pool_capacity" yaml:"pool_capacity"`
	Debug                    bool          `toml:"debug" yaml:"debug"`
	Logging                  LoggingConfig `toml:"logging" yaml:"logging"`

	// Logger overrides Logging when set.
	Logger *zap.Logger `toml:"-" yaml:"-"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

const (
	defaultEntitiesCapacity         = 1024
	defaultFiltersCapacity          = 128
	defaultPoolsCapacity            = 512
	defaultEntityComponentsCapacity = 8
	defaultFilterEntitiesCapacity   = 256
	defaultPoolCapacity             = 128
)

func DefaultConfig() Config {
	return Config{
		EntitiesCapacity:         defaultEntitiesCapacity,
		FiltersCapacity:          defaultFiltersCapacity,
		PoolsCapacity:            defaultPoolsCapacity,
		EntityComponentsCapacity: defaultEntityComponentsCapacity,
		FilterEntitiesCapacity:   defaultFilterEntitiesCapacity,
		PoolCapacity:             defaultPoolCapacity,
	}
}

func (c Config) withDefaults() Config {
	if c.EntitiesCapacity <= 0 {
		c.EntitiesCapacity = defaultEntitiesCapacity
	}
	if c.FiltersCapacity <= 0 {
		c.FiltersCapacity = defaultFiltersCapacity
	}
	if c.PoolsCapacity <= 0 {
		c.PoolsCapacity = defaultPoolsCapacity
	}
	if c.EntityComponentsCapacity <= 0 {
		c.EntityComponentsCapacity = defaultEntityComponentsCapacity
	}
	if c.FilterEntitiesCapacity <= 0 {
		c.FilterEntitiesCapacity = defaultFilterEntitiesCapacity
	}
	if c.PoolCapacity <= 0 {
		c.PoolCapacity = defaultPoolCapacity
	}
	return c
}

// LoadConfig reads a world configuration from a .toml, .yaml or .yml file.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "read config %s", path)
	}
	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, eris.Wrapf(err, "parse config %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, eris.Wrapf(err, "parse config %s", path)
		}
	default:
		return Config{}, eris.Errorf("config %s: unsupported format %q", path, ext)
	}
	return cfg.withDefaults(), nil
}

// newLogger builds the world logger. An empty level disables logging.
func newLogger(cfg LoggingConfig) (*zap.Logger, error) {
	if cfg.Level == "" {
		return zap.NewNop(), nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "build logger")
	}
	return logger.Named("depot"), nil
}
