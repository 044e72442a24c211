// Package config loads the tendril.yaml project file and variables files.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "tendril.yaml"

// Source names the backend scripts are read from.
type Source string

const (
	SourceFile  Source = "file"
	SourceLoam  Source = "loam"
	SourceRedis Source = "redis"
)

// Redis configures the redis source.
type Redis struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// Config represents the structure of tendril.yaml.
type Config struct {
	Scripts  string         `yaml:"scripts" json:"scripts"`
	Source   Source         `yaml:"source" json:"source"`
	Strict   bool           `yaml:"strict" json:"strict"`
	Escape   *bool          `yaml:"escape" json:"escape"`
	LogLevel string         `yaml:"log_level" json:"log_level"`
	Vars     map[string]any `yaml:"vars" json:"vars"`
	Redis    Redis          `yaml:"redis" json:"redis"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Scripts:  ".",
		Source:   SourceFile,
		LogLevel: "info",
		Vars:     map[string]any{},
		Redis: Redis{
			Addr: "localhost:6379",
		},
	}
}

// Load reads a configuration file (YAML or JSON) over the defaults.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := decode(path, data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if cfg.Vars == nil {
		cfg.Vars = map[string]any{}
	}

	switch cfg.Source {
	case SourceFile, SourceLoam, SourceRedis:
	case "":
		cfg.Source = SourceFile
	default:
		return cfg, fmt.Errorf("unknown source %q (want file, loam or redis)", cfg.Source)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ShouldEscape reports whether rendered text is escaped. It defaults to true.
func (c Config) ShouldEscape() bool {
	return c.Escape == nil || *c.Escape
}

// LoadVars reads a variables file (YAML or JSON) into a map.
func LoadVars(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vars: %w", err)
	}
	vars := map[string]any{}
	if err := decode(path, data, &vars); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return vars, nil
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

func decode(path string, data []byte, v any) error {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return json.Unmarshal(data, v)
	}
	// Default to YAML
	return yaml.Unmarshal(data, v)
}
