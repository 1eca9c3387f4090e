package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/vidyasagar/tabnav/internal/tabhistory"
)

// Store backends accepted in Config.Store.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

const appName = "tabnav"

// Config is the user's tabnav configuration, kept as config.json in the
// config directory.
type Config struct {
	Theme        string `json:"theme"`
	Homepage     string `json:"homepage"`
	Store        string `json:"store"`
	HistoryLimit int    `json:"history_limit"`
	LogLevel     string `json:"log_level"`
	path         string
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Theme:        "default",
		Store:        BackendSQLite,
		HistoryLimit: tabhistory.DefaultLimit,
		LogLevel:     "info",
	}
}

// LoadConfig reads config.json from the config directory.
func LoadConfig() (*Config, error) {
	dir, err := appDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(filepath.Join(dir, "config.json"))
}

// LoadConfigFrom reads the configuration at path. A missing file yields the
// defaults, which are written back so the user has something to edit.
func LoadConfigFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Best effort; an unwritable config dir is not fatal.
		_ = cfg.Save()
		return &cfg, nil
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate rejects unknown backends and fills zero values with defaults.
func (c *Config) Validate() error {
	switch c.Store {
	case "":
		c.Store = BackendSQLite
	case BackendSQLite, BackendJSON:
	default:
		return fmt.Errorf("unknown store backend %q (want %s or %s)", c.Store, BackendSQLite, BackendJSON)
	}
	if c.HistoryLimit < 1 {
		c.HistoryLimit = tabhistory.DefaultLimit
	}
	return nil
}

// Save writes c back to the file it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		dir, err := appDir("XDG_CONFIG_HOME", ".config")
		if err != nil {
			return err
		}
		c.path = filepath.Join(dir, "config.json")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(c.path, data, 0o644)
}

// DataDir returns where tabnav keeps its database, history file and log.
func DataDir() (string, error) {
	return appDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// appDir resolves the per-user tabnav directory. On Linux and the BSDs it
// honours xdgVar, falling back to home/xdgFallback.
func appDir(xdgVar, xdgFallback string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home dir: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName), nil
		}
		return filepath.Join(home, "."+appName), nil
	}
	if base := os.Getenv(xdgVar); base != "" {
		return filepath.Join(base, appName), nil
	}
	return filepath.Join(home, xdgFallback, appName), nil
}
