// ABOUTME: Nutrition configuration management with backend selection.
// ABOUTME: JSON config file, .env/environment overrides, and the storage backend factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/nutrition/internal/logging"
	"github.com/harperreed/nutrition/internal/storage"
	"github.com/joho/godotenv"
)

// Defaults applied when a setting is absent from both file and environment.
const (
	DefaultBackend              = "sqlite"
	DefaultListenAddr           = ":8080"
	DefaultOFFBaseURL           = "https://world.openfoodfacts.org"
	DefaultLookupTimeoutSeconds = 10
)

// Environment variables that override file settings.
const (
	EnvBackend       = "NUTRITION_BACKEND"
	EnvDataDir       = "NUTRITION_DATA_DIR"
	EnvListenAddr    = "NUTRITION_LISTEN_ADDR"
	EnvLogLevel      = "NUTRITION_LOG_LEVEL"
	EnvOFFBaseURL    = "NUTRITION_OFF_BASE_URL"
	EnvLookupTimeout = "NUTRITION_LOOKUP_TIMEOUT_SECONDS"
)

// Config stores nutrition tool configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "markdown".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// SQLite puts nutrition.db here. Markdown puts foods/ and meals/ folders here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/nutrition.
	DataDir string `json:"data_dir,omitempty"`

	// ListenAddr is the HTTP API bind address for `nutrition serve`.
	ListenAddr string `json:"listen_addr,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// OFFBaseURL is the Open Food Facts endpoint used for barcode and name lookups.
	OFFBaseURL string `json:"off_base_url,omitempty"`

	// LookupTimeoutSeconds bounds a single external lookup request.
	LookupTimeoutSeconds int `json:"lookup_timeout_seconds,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return DefaultBackend
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetListenAddr returns the HTTP bind address.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// GetLogLevel returns the log level name.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return logging.DefaultLevel
	}
	return c.LogLevel
}

// GetOFFBaseURL returns the Open Food Facts base URL without a trailing slash.
func (c *Config) GetOFFBaseURL() string {
	if c.OFFBaseURL == "" {
		return DefaultOFFBaseURL
	}
	return strings.TrimRight(c.OFFBaseURL, "/")
}

// GetLookupTimeout returns the per-request timeout for external lookups.
func (c *Config) GetLookupTimeout() time.Duration {
	if c.LookupTimeoutSeconds <= 0 {
		return DefaultLookupTimeoutSeconds * time.Second
	}
	return time.Duration(c.LookupTimeoutSeconds) * time.Second
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	return OpenBackend(c.GetBackend(), c.GetDataDir())
}

// OpenBackend opens a named backend rooted at dataDir.
func OpenBackend(backend, dataDir string) (storage.Repository, error) {
	switch backend {
	case "sqlite":
		dbPath := filepath.Join(dataDir, storage.DBFile)
		return storage.Open(dbPath)
	case "markdown":
		return storage.NewMarkdownStore(dataDir)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "nutrition", "config.json")
}

// Load reads config from disk, then applies environment overrides. A .env
// file in the working directory is loaded first when present; variables
// already set in the process environment win over it.
func Load() (*Config, error) {
	cfg, err := LoadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads only the JSON config at path. A missing file yields an
// empty config.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnv overlays settings from lookup, usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	overlay := map[string]*string{
		EnvBackend:    &c.Backend,
		EnvDataDir:    &c.DataDir,
		EnvListenAddr: &c.ListenAddr,
		EnvLogLevel:   &c.LogLevel,
		EnvOFFBaseURL: &c.OFFBaseURL,
	}
	for key, field := range overlay {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}

	if v, ok := lookup(EnvLookupTimeout); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLookupTimeout, err)
		}
		c.LookupTimeoutSeconds = n
	}
	return nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
