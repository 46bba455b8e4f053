package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the config path given on the command line.
const EnvPath = "TILECOMBAT_CONFIG"

// Definition sources.
const (
	SourceYAML     = "yaml"
	SourceDatabase = "database"
)

// Config holds all configuration for the combat simulator.
type Config struct {
	LogLevel string `yaml:"log_level"`

	// Definitions
	Source         string `yaml:"source"` // yaml | database
	DefinitionsDir string `yaml:"definitions_dir"`
	ScriptsDir     string `yaml:"scripts_dir"`

	// Lua formula calls
	ScriptTimeout time.Duration `yaml:"script_timeout"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Demo arena
	Demo Demo `yaml:"demo"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Demo describes the arena the simulator casts in.
type Demo struct {
	Width            int32 `yaml:"width"`
	Height           int32 `yaml:"height"`
	Floor            int32 `yaml:"floor"`
	Monsters         int   `yaml:"monsters"`
	CasterLevel      int32 `yaml:"caster_level"`
	CasterMagicLevel int32 `yaml:"caster_magic_level"`

	// ProtectionZoneRows marks the arena's top rows as a protection zone.
	ProtectionZoneRows int32 `yaml:"protection_zone_rows"`
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		LogLevel:       "info",
		Source:         SourceYAML,
		DefinitionsDir: "data/combat",
		ScriptsDir:     "data/scripts",
		ScriptTimeout:  50 * time.Millisecond,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "tilecombat",
			Password: "tilecombat",
			DBName:   "tilecombat",
			SSLMode:  "disable",
		},
		Demo: Demo{
			Width:              15,
			Height:             11,
			Floor:              7,
			Monsters:           6,
			CasterLevel:        20,
			CasterMagicLevel:   10,
			ProtectionZoneRows: 2,
		},
	}
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that have no usable fallback.
func (c Config) Validate() error {
	switch c.Source {
	case SourceYAML, SourceDatabase:
	default:
		return fmt.Errorf("unknown definitions source %q", c.Source)
	}
	if c.Demo.Width <= 0 || c.Demo.Height <= 0 {
		return fmt.Errorf("demo arena must be at least 1x1, got %dx%d", c.Demo.Width, c.Demo.Height)
	}
	if c.Demo.Monsters < 0 {
		return fmt.Errorf("negative demo monster count %d", c.Demo.Monsters)
	}
	return nil
}

// Path resolves the config path: TILECOMBAT_CONFIG wins over fallback.
func Path(fallback string) string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return fallback
}
