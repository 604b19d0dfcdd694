package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ConfigFileName = "travelease.yaml"

var ErrConfigNotFound = errors.New(ConfigFileName + " not found")

// Config holds all configuration for the application
type Config struct {
	// Backend API Configuration
	API APIConfig `yaml:"api"`

	// Session persistence Configuration
	Session SessionConfig `yaml:"session"`

	// Web UI Configuration
	Web WebConfig `yaml:"web"`

	// Logging Configuration
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig holds backend API configuration
type APIConfig struct {
	URL string `yaml:"url"`
	// Timeout bounds each request; zero means no timeout
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig selects where the session token is persisted
type SessionConfig struct {
	Backend string `yaml:"backend"` // keyring, file, sqlite, memory
	Path    string `yaml:"path"`
}

// WebConfig holds web UI configuration
type WebConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

type options struct {
	dir          string
	envFiles     []string
	defaultLevel string
}

// Option customizes Load
type Option func(*options)

// WithDir starts the config file search in dir instead of the working directory
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithEnvFiles replaces the dotenv files loaded before reading the environment
func WithEnvFiles(files ...string) Option {
	return func(o *options) {
		o.envFiles = files
	}
}

// WithDefaultLogLevel sets the log level used when nothing else sets one
func WithDefaultLogLevel(level string) Option {
	return func(o *options) {
		o.defaultLevel = level
	}
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL: "http://localhost:8080",
		},
		Session: SessionConfig{
			Backend: "keyring",
		},
		Web: WebConfig{
			Addr: "127.0.0.1:3000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from defaults, an optional travelease.yaml
// found in the search directory or one of its parents, and environment
// variables (which win).
func Load(opts ...Option) (*Config, error) {
	o := options{envFiles: []string{".env", ".env.local"}}
	for _, opt := range opts {
		opt(&o)
	}

	// Load .env files (fails silently if files don't exist)
	for _, f := range o.envFiles {
		_ = godotenv.Load(f)
	}

	cfg := Default()
	if o.defaultLevel != "" {
		cfg.Logging.Level = o.defaultLevel
	}

	path, err := FindConfigFile(o.dir)
	switch {
	case err == nil:
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	case !errors.Is(err, ErrConfigNotFound):
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for travelease.yaml in dir and its parents. An
// empty dir means the current directory.
func FindConfigFile(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}
	start := dir

	// Search upwards until we find the file or reach root
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%w in %s or any parent directory", ErrConfigNotFound, start)
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TRAVELEASE_API_URL"); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv("TRAVELEASE_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TRAVELEASE_API_TIMEOUT %q: %w", v, err)
		}
		c.API.Timeout = d
	}
	if v := os.Getenv("TRAVELEASE_SESSION_BACKEND"); v != "" {
		c.Session.Backend = v
	}
	if v := os.Getenv("TRAVELEASE_SESSION_PATH"); v != "" {
		c.Session.Path = v
	}
	if v := os.Getenv("TRAVELEASE_WEB_ADDR"); v != "" {
		c.Web.Addr = v
	}
	if v := os.Getenv("TRAVELEASE_WEB_ORIGINS"); v != "" {
		c.Web.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
