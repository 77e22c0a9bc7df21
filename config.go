package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	driverSQLite = "sqlite"
	driverBolt   = "bolt"
)

type Config struct {
	Person  string        `yaml:"person"  env:"MEALTIME_PERSON" env-default:"Max"`
	Storage StorageConfig `yaml:"storage"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"MEALTIME_STORAGE_DRIVER" env-default:"sqlite"`
	Path   string `yaml:"path"   env:"MEALTIME_STORAGE_PATH"`
}

type DisplayConfig struct {
	Title      string `yaml:"title"       env:"MEALTIME_TITLE"       env-default:"My happy meal time"`
	TimeLayout string `yaml:"time_layout" env:"MEALTIME_TIME_LAYOUT" env-default:"1/2/06, 3:04 PM"`

	// EmptyPlaceholder renders a single placeholder row when there are no meals.
	EmptyPlaceholder bool   `yaml:"empty_placeholder" env:"MEALTIME_EMPTY_PLACEHOLDER" env-default:"false"`
	PlaceholderText  string `yaml:"placeholder_text"  env:"MEALTIME_PLACEHOLDER_TEXT"  env-default:"No meals yet"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"MEALTIME_LOG_LEVEL"  env-default:"warn"`
	Format string `yaml:"format" env:"MEALTIME_LOG_FORMAT" env-default:"text"`
}

// LoadConfig reads configuration from a YAML file and environment variables.
// The file is path if given, else CONFIG_PATH, else the per-user config file
// when it exists. Without a file only ENV and defaults are used.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if !explicit {
		path = filepath.Join(os.Getenv("HOME"), ".config", "mealtime", "config.yaml")
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate normalizes the config and fills in the default storage path.
func (c *Config) Validate() error {
	c.Person = strings.TrimSpace(c.Person)
	if c.Person == "" {
		return ErrInvalidName
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	var file string
	switch c.Storage.Driver {
	case driverSQLite:
		file = "mealtime.db"
	case driverBolt:
		file = "mealtime.bolt"
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(os.Getenv("HOME"), ".local", "share", "mealtime", file)
	}

	if c.Display.TimeLayout == "" {
		return fmt.Errorf("display time layout must not be empty")
	}

	return nil
}
