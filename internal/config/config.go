// Package config handles the configuration directory, settings file and paths.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskboard"

	// SettingsFile is the optional settings filename inside the config dir.
	SettingsFile = "config.yaml"

	// TokenFile is the stored credential filename.
	TokenFile = "token.json"

	// BaseURLEnv overrides the backend base URL.
	BaseURLEnv = "TASKBOARD_API_BASE_URL"

	// DefaultBaseURL is used when neither the env nor config.yaml set one.
	DefaultBaseURL = "http://localhost:3001"

	// DefaultPageSize is the page size of the paginated tables.
	DefaultPageSize = 20

	// DefaultBoardLimit is the number of tasks fetched for the kanban board.
	DefaultBoardLimit = 200
)

// Settings is the on-disk shape of config.yaml.
type Settings struct {
	BaseURL    string `yaml:"base_url"`
	PageSize   int    `yaml:"page_size"`
	BoardLimit int    `yaml:"board_limit"`
	// Timeout is a Go duration string. Empty means the transport default.
	Timeout string `yaml:"timeout"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// BaseURL is the backend base URL without a trailing slash.
	BaseURL string

	// PageSize is the default limit for paginated lists.
	PageSize int

	// BoardLimit is the limit used when loading the board.
	BoardLimit int

	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Logger receives debug logs. Never nil after New.
	Logger *slog.Logger
}

// New creates a new Config with the default or specified config directory
// and loads config.yaml from it when present.
// If configDir is empty, uses XDG_CONFIG_HOME/taskboard or $HOME/.config/taskboard.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:        dir,
		BaseURL:    DefaultBaseURL,
		PageSize:   DefaultPageSize,
		BoardLimit: DefaultBoardLimit,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	settings, err := LoadSettings(cfg.SettingsPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.apply(settings); err != nil {
		return nil, err
	}

	if env := strings.TrimSpace(os.Getenv(BaseURLEnv)); env != "" {
		cfg.BaseURL = env
	}
	cfg.BaseURL = NormalizeBaseURL(cfg.BaseURL)
	return cfg, nil
}

// LoadSettings reads config.yaml. A missing file yields zero Settings.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("read %s: %w", SettingsFile, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	return s, nil
}

func (c *Config) apply(s Settings) error {
	if strings.TrimSpace(s.BaseURL) != "" {
		c.BaseURL = strings.TrimSpace(s.BaseURL)
	}
	if s.PageSize > 0 {
		c.PageSize = s.PageSize
	}
	if s.BoardLimit > 0 {
		c.BoardLimit = s.BoardLimit
	}
	if s.Timeout != "" {
		d, err := time.ParseDuration(s.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in %s: %w", SettingsFile, err)
		}
		c.Timeout = d
	}
	return nil
}

// SetDebug switches the logger to stderr at debug level.
func (c *Config) SetDebug(debug bool, errOut io.Writer) {
	c.Debug = debug
	if debug {
		c.Logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// NormalizeBaseURL trims whitespace and trailing slashes, falling back to DefaultBaseURL.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if u == "" {
		return DefaultBaseURL
	}
	return u
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

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// TokenPath returns the path to the stored token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
