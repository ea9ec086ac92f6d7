package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the optional config file seeding non-secret values.
const DefaultPath = "~/.chboard/chboard.yaml"

// Config holds all settings for one chboard process. It is loaded once at
// startup and treated as immutable afterwards; secrets come only from the
// environment, never from the YAML file.
type Config struct {
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LogConfig        `yaml:"logging,omitempty"`
	Compat     CompatConfig     `yaml:"compat,omitempty"`
}

// ClickHouseConfig defines the ClickHouse connection.
type ClickHouseConfig struct {
	BaseURL             string `yaml:"base_url" env:"CLICKHOUSE_BASE_URL"`
	Port                int    `yaml:"port" env:"CLICKHOUSE_PORT" env-default:"9440"`
	User                string `yaml:"user" env:"CLICKHOUSE_USER"`
	Password            string `yaml:"-" env:"CLICKHOUSE_PASSWORD"`
	Database            string `yaml:"database" env:"CLICKHOUSE_DATABASE" env-default:"default"`
	CompressionProtocol string `yaml:"compression_protocol" env:"CLICKHOUSE_COMPRESSION_PROTOCOL" env-default:"lz4"`
	BatchSize           int    `yaml:"batch_size" env:"CLICKHOUSE_BATCH_SIZE" env-default:"65536"`
}

// ServerConfig defines the web UI server.
type ServerConfig struct {
	Port int `yaml:"port" env:"CHBOARD_PORT" env-default:"8230"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level     string `yaml:"level,omitempty" env:"CHBOARD_LOG_LEVEL" env-default:"info"`
	Directory string `yaml:"directory,omitempty" env:"CHBOARD_LOG_DIR"`
}

// CompatConfig preserves behaviors of the original panel that were judged
// latent bugs. Both default off.
type CompatConfig struct {
	// MetaQueries makes ClickHouse itself build the per-table statements as
	// text (the queries-generating-queries pattern) instead of expanding
	// templates in-process.
	MetaQueries bool `yaml:"meta_queries,omitempty" env:"CHBOARD_COMPAT_META_QUERIES"`
	// TextCompression renders the physical compression percentage as text,
	// matching the original report schema.
	TextCompression bool `yaml:"text_compression,omitempty" env:"CHBOARD_COMPAT_TEXT_COMPRESSION"`
}

var compressionProtocols = map[string]bool{
	"none": true, "lz4": true, "zstd": true, "gzip": true, "deflate": true, "br": true,
}

// Load reads settings from the optional YAML file at path (skipped when the
// file does not exist) with environment variables taking precedence, then
// validates. No connection is attempted here.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ExpandHome(DefaultPath)
	} else {
		path = ExpandHome(path)
	}

	cfg := &Config{}
	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every required field is present and well formed.
func (c *Config) Validate() error {
	var missing []string
	if c.ClickHouse.BaseURL == "" {
		missing = append(missing, "clickhouse base_url (CLICKHOUSE_BASE_URL)")
	}
	if c.ClickHouse.User == "" {
		missing = append(missing, "clickhouse user (CLICKHOUSE_USER)")
	}
	if c.ClickHouse.Password == "" {
		missing = append(missing, "clickhouse password (CLICKHOUSE_PASSWORD)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if c.ClickHouse.Port <= 0 || c.ClickHouse.Port > 65535 {
		return fmt.Errorf("invalid clickhouse port %d", c.ClickHouse.Port)
	}
	if c.ClickHouse.BatchSize < 0 {
		return fmt.Errorf("invalid clickhouse batch size %d", c.ClickHouse.BatchSize)
	}
	if !compressionProtocols[strings.ToLower(c.ClickHouse.CompressionProtocol)] {
		return fmt.Errorf("unknown compression protocol %q", c.ClickHouse.CompressionProtocol)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// Save writes the non-secret settings as a starter YAML file.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	} else {
		path = ExpandHome(path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
