package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the directory under the user config dir holding config and catalog.
	AppDir = "rm"
	// FileName is the default config file name.
	FileName = "config.yaml"
	// DefaultCatalogFile is the sqlite catalog created by init when no location is set.
	DefaultCatalogFile = "local.sqlite3"

	defaultMaxUploadSize = 1 << 30
)

// Config captures the configuration loaded from config.yaml.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Server  ServerConfig  `yaml:"server"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
}

// CatalogConfig selects and locates the catalog store.
type CatalogConfig struct {
	// Kind is sqlite, local, mysql or postgres.
	Kind string `yaml:"kind"`
	// Location is a file path for sqlite, a DSN otherwise.
	Location string `yaml:"location"`
}

// ServerConfig defines HTTP server options.
type ServerConfig struct {
	Address string `yaml:"address"`
	// AllowOrigin enables CORS for the given origin when set.
	AllowOrigin string `yaml:"allow_origin"`
	// MaxUploadSize limits uploaded files, in bytes.
	MaxUploadSize int64 `yaml:"max_upload_size"`
	// AllowedTypes restricts uploads to these MIME types when not empty.
	AllowedTypes []string `yaml:"allowed_types"`
}

// RedisConfig defines Redis connection settings for the write lock.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig holds the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Dir returns the per-user configuration directory of the program.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(base, AppDir), nil
}

// DefaultPath returns <user config dir>/rm/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the YAML configuration at path. An empty path means
// DefaultPath. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		hlog.Warnf("config file %q not found, using defaults", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	hlog.Debugf("loading config from %s", path)
	var parsed Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&parsed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&parsed)
	return &parsed, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// HertzLevel maps the configured level onto hlog.
func (c LogConfig) HertzLevel() hlog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return hlog.LevelDebug
	case "warn", "warning":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Catalog.Kind == "" {
		cfg.Catalog.Kind = "sqlite"
	}
	if cfg.Catalog.Location == "" {
		if dir, err := Dir(); err == nil {
			cfg.Catalog.Location = filepath.Join(dir, DefaultCatalogFile)
		} else {
			cfg.Catalog.Location = DefaultCatalogFile
		}
	}
	cfg.Catalog.Location = expandHome(cfg.Catalog.Location)
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.MaxUploadSize <= 0 {
		cfg.Server.MaxUploadSize = defaultMaxUploadSize
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
