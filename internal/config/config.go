// Package config handles the configuration directory, config file and
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application directory name.
	AppName = "todont"

	// ConfigFile is the optional TOML config filename.
	ConfigFile = "config.toml"

	// DatabaseFile is the default sqlite filename for the local store.
	DatabaseFile = "todont.sqlite"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"
)

// Backend names.
const (
	BackendHTTP   = "http"
	BackendLocal  = "local"
	BackendGoogle = "google"
)

// Defaults.
const (
	DefaultServerURL      = "http://localhost:8000"
	DefaultListen         = ":8000"
	DefaultRequestTimeout = 5 * time.Second
)

// Duration is a time.Duration that decodes from TOML strings like "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// ServerConfig configures `todont serve`.
type ServerConfig struct {
	Listen   string `toml:"listen"`
	Backend  string `toml:"backend"`
	Database string `toml:"database"`
}

// GoogleConfig configures the Google Tasks backend.
type GoogleConfig struct {
	// List is the task list title; empty means the user's default list.
	List string `toml:"list"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `toml:"-"`

	// Debug enables debug logging.
	Debug bool `toml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `toml:"-"`

	// Backend selects the service used by client commands.
	Backend string `toml:"backend"`

	// ServerURL is the base URL of a todont server (http backend, watch).
	ServerURL string `toml:"server_url"`

	// InitDelay delays the list controller's initial fetch.
	InitDelay Duration `toml:"init_delay"`

	// RequestTimeout bounds each backend request.
	RequestTimeout Duration `toml:"request_timeout"`

	Server ServerConfig `toml:"server"`
	Google GoogleConfig `toml:"google"`
	Log    LogConfig    `toml:"log"`
}

// New creates a new Config with defaults and the default or specified
// config directory. If configDir is empty, uses XDG_CONFIG_HOME/todont or
// $HOME/.config/todont. The config file is not read; see Load.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	setDefaults(cfg)
	return cfg, nil
}

// Load creates a Config and applies, in order: defaults, the config file in
// the directory (if present) and environment variables.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}
	if cfg.HasConfigFile() {
		if _, err := toml.DecodeFile(cfg.ConfigPath(), cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", cfg.ConfigPath(), err)
		}
	}
	loadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Backend = BackendHTTP
	cfg.ServerURL = DefaultServerURL
	cfg.RequestTimeout = Duration{DefaultRequestTimeout}
	cfg.Server = ServerConfig{
		Listen:  DefaultListen,
		Backend: BackendLocal,
	}
	cfg.Log = LogConfig{Level: "info", Format: "text"}
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODONT_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("TODONT_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("TODONT_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("TODONT_DATABASE"); v != "" {
		cfg.Server.Database = v
	}
	if v := os.Getenv("TODONT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.Server.Backend = strings.ToLower(strings.TrimSpace(c.Server.Backend))
	if !validBackend(c.Backend) {
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	if c.Server.Backend == BackendHTTP || !validBackend(c.Server.Backend) {
		return fmt.Errorf("unsupported server backend: %s", c.Server.Backend)
	}
	if c.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	return nil
}

func validBackend(name string) bool {
	switch name {
	case BackendHTTP, BackendLocal, BackendGoogle:
		return true
	}
	return false
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to the TOML config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// HasConfigFile checks if the config file exists.
func (c *Config) HasConfigFile() bool {
	_, err := os.Stat(c.ConfigPath())
	return err == nil
}

// DatabasePath returns the sqlite path used by the local store.
// An explicit database setting wins; "memory" selects the in-memory store.
func (c *Config) DatabasePath() string {
	if c.Server.Database != "" {
		return c.Server.Database
	}
	return filepath.Join(c.Dir, DatabaseFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
