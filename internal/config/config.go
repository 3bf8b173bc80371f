// Package config loads client and server settings.
//
// Precedence, lowest to highest: built-in defaults, the YAML file,
// environment variables, command line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of all environment variables
const EnvPrefix = "METAREVIEW_"

// Storage backends of the client
const (
	StorageBolt = "bolt"
	StorageDir  = "dir"
)

// ClientConfig holds the client settings
type ClientConfig struct {
	Storage   StorageConfig   `yaml:"storage"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	ServerURL string          `yaml:"server_url"`
	LogLevel  string          `yaml:"log_level"`
	Timeout   time.Duration   `yaml:"timeout"`
}

// StorageConfig selects the local credential store
type StorageConfig struct {
	// Backend - "bolt" (один файл bbolt) или "dir" (каталог с файлами, общий для процессов)
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// EndpointsConfig overrides the authentication endpoint paths
type EndpointsConfig struct {
	Token       string `yaml:"token"`
	Register    string `yaml:"register"`
	CurrentUser string `yaml:"current_user"`
}

// ServerConfig holds the development server settings
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	DatabasePath    string        `yaml:"database_path"`
	JWTSecret       string        `yaml:"jwt_secret"`
	UploadDir       string        `yaml:"upload_dir"`
	LogLevel        string        `yaml:"log_level"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	LoginRateWindow time.Duration `yaml:"login_rate_window"`
	LoginRateLimit  int           `yaml:"login_rate_limit"`
}

// DefaultClient returns the client defaults
func DefaultClient() ClientConfig {
	return ClientConfig{
		ServerURL: "http://localhost:8000",
		Storage: StorageConfig{
			Backend: StorageBolt,
			Path:    "metareview-client.db",
		},
		Timeout:  30 * time.Second,
		LogLevel: "warn",
	}
}

// DefaultServer returns the server defaults
func DefaultServer() ServerConfig {
	return ServerConfig{
		Addr:            ":8000",
		DatabasePath:    "metareview.db",
		JWTSecret:       "metareview-dev-secret",
		UploadDir:       "uploads",
		LogLevel:        "info",
		TokenTTL:        30 * time.Minute,
		LoginRateLimit:  5,
		LoginRateWindow: time.Minute,
	}
}

// DefaultPath returns the default config file location
// ($XDG_CONFIG_HOME/metareview/config.yaml or its platform equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "metareview", "config.yaml")
}

// LoadClient loads the client configuration. A missing file at the default
// location is not an error; a missing explicitly given file is.
func LoadClient(path string) (ClientConfig, error) {
	cfg := DefaultClient()

	if err := loadFile(path, &cfg); err != nil {
		return ClientConfig{}, err
	}

	cfg.ServerURL = getenv("SERVER", cfg.ServerURL)
	cfg.Storage.Backend = getenv("STORAGE", cfg.Storage.Backend)
	cfg.Storage.Path = getenv("DB", cfg.Storage.Path)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.Timeout = getenvDuration("TIMEOUT", cfg.Timeout)

	if err := cfg.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// Validate checks the client configuration
func (c ClientConfig) Validate() error {
	if c.ServerURL == "" {
		return errors.New("server url is required")
	}
	switch c.Storage.Backend {
	case StorageBolt, StorageDir:
	default:
		return fmt.Errorf("unknown storage backend %q (want %q or %q)", c.Storage.Backend, StorageBolt, StorageDir)
	}
	if c.Storage.Path == "" {
		return errors.New("storage path is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

// LoadServer loads the server configuration
func LoadServer(path string) (ServerConfig, error) {
	cfg := DefaultServer()

	if err := loadFile(path, &cfg); err != nil {
		return ServerConfig{}, err
	}

	cfg.Addr = getenv("ADDR", cfg.Addr)
	cfg.DatabasePath = getenv("DATABASE", cfg.DatabasePath)
	cfg.JWTSecret = getenv("JWT_SECRET", cfg.JWTSecret)
	cfg.UploadDir = getenv("UPLOAD_DIR", cfg.UploadDir)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.TokenTTL = getenvDuration("TOKEN_TTL", cfg.TokenTTL)
	cfg.LoginRateLimit = getenvInt("LOGIN_RATE_LIMIT", cfg.LoginRateLimit)
	cfg.LoginRateWindow = getenvDuration("LOGIN_RATE_WINDOW", cfg.LoginRateWindow)

	if cfg.JWTSecret == "" {
		return ServerConfig{}, errors.New("jwt secret is required")
	}
	if cfg.TokenTTL <= 0 {
		return ServerConfig{}, errors.New("token ttl must be positive")
	}
	return cfg, nil
}

// loadFile читает YAML файл поверх defaults, раскрывая переменные окружения
func loadFile(path string, out any) error {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), out); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// NewLogger creates a text slog logger writing to w at the named level
// (debug, info, warn, error).
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
