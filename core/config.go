package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itsneelabh/mymarket/pkg/logger"
	"github.com/itsneelabh/mymarket/pkg/storage"
	"github.com/itsneelabh/mymarket/pkg/telemetry"
)

// Storage backend names accepted by StorageConfig.Backend.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all configuration options for a storefront process.
// It supports three-layer configuration priority:
//  1. Default values (lowest priority)
//  2. Environment variables (medium priority)
//  3. Functional options (highest priority)
//
// Example usage:
//
//	cfg, err := NewConfig(
//	    WithDataDir("/var/lib/mymarket"),
//	    WithLogLevel("debug"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
type Config struct {
	// Name identifies the process in logs and traces
	Name string `json:"name" yaml:"name" env:"MYMARKET_NAME" default:"mymarket"`

	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`

	// Admins are the administrator accounts accepted by Catalog.Authenticate
	Admins []AdminAccount `json:"admins" yaml:"admins" env:"MYMARKET_ADMINS"`

	// TopProducts is the default length of the frequently-bought report
	TopProducts int `json:"top_products" yaml:"top_products" env:"MYMARKET_TOP_PRODUCTS" default:"5"`

	// Injected collaborators, never serialized
	logger    logger.Logger
	telemetry telemetry.Telemetry
	backend   storage.Backend
	clock     func() time.Time
}

// StorageConfig selects where artifacts are persisted.
type StorageConfig struct {
	Backend   string `json:"backend" yaml:"backend" env:"MYMARKET_STORAGE_BACKEND" default:"file"`
	DataDir   string `json:"data_dir" yaml:"data_dir" env:"MYMARKET_DATA_DIR" default:"./data"`
	RedisURL  string `json:"redis_url" yaml:"redis_url" env:"MYMARKET_REDIS_URL,REDIS_URL"`
	Namespace string `json:"namespace" yaml:"namespace" env:"MYMARKET_NAMESPACE" default:"mymarket"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" env:"MYMARKET_LOG_LEVEL" default:"info"`
	Format string `json:"format" yaml:"format" env:"MYMARKET_LOG_FORMAT" default:"text"`
}

// TelemetryConfig contains tracing and metrics settings.
// Endpoint is an OTLP gRPC address, or "stdout" for the stdout exporter.
type TelemetryConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled" env:"MYMARKET_TELEMETRY_ENABLED" default:"false"`
	Endpoint string `json:"endpoint" yaml:"endpoint" env:"MYMARKET_TELEMETRY_ENDPOINT,OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// AdminAccount is one administrator login.
type AdminAccount struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// Option is a functional option for configuring a storefront.
// Options are applied in order and can return an error if the configuration is invalid.
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults.
// The admin accounts match the ones the storefront always shipped with.
func DefaultConfig() *Config {
	return &Config{
		Name: "mymarket",
		Storage: StorageConfig{
			Backend:   BackendFile,
			DataDir:   "./data",
			Namespace: storage.DefaultNamespace,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Admins: []AdminAccount{
			{Username: "admin1", Password: "password1"},
			{Username: "admin2", Password: "password2"},
		},
		TopProducts: 5,
	}
}

// LoadFromEnv loads configuration from environment variables.
// Malformed numeric values are ignored and the current value is kept.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("MYMARKET_NAME"); v != "" {
		c.Name = v
	}

	// Storage settings
	if v := os.Getenv("MYMARKET_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("MYMARKET_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("MYMARKET_REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	} else if v := os.Getenv("REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}
	if v := os.Getenv("MYMARKET_NAMESPACE"); v != "" {
		c.Storage.Namespace = v
	}

	// Logging settings
	if v := os.Getenv("MYMARKET_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("MYMARKET_LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}

	// Telemetry settings
	if v := os.Getenv("MYMARKET_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("MYMARKET_TELEMETRY_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
	} else if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
	}

	if v := os.Getenv("MYMARKET_ADMINS"); v != "" {
		admins, err := parseAdmins(v)
		if err != nil {
			return err
		}
		c.Admins = admins
	}
	if v := os.Getenv("MYMARKET_TOP_PRODUCTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TopProducts = n
		}
	}

	return nil
}

// LoadFromFile loads configuration from a JSON or YAML file.
// Fields absent from the file keep their current values.
func (c *Config) LoadFromFile(path string) error {
	cleanPath := filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config file extension %s: %w", ext, ErrInvalidConfiguration)
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 -- operator-supplied config path
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %v: %w", err, ErrInvalidConfiguration)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %v: %w", err, ErrInvalidConfiguration)
		}
	}

	return nil
}

// Validate checks if the configuration is valid and returns an error if not.
// This method is called automatically by NewConfig() but can also be called
// manually after modifying configuration.
func (c *Config) Validate() error {
	if c.Name == "" {
		return &MarketError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: "name is required",
			Err:     ErrMissingConfiguration,
		}
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.DataDir == "" && c.backend == nil {
			return &MarketError{
				Op:      "Config.Validate",
				Kind:    "config",
				Message: "data directory is required for the file backend",
				Err:     ErrMissingConfiguration,
			}
		}
	case BackendRedis:
		if c.Storage.RedisURL == "" && c.backend == nil {
			return &MarketError{
				Op:      "Config.Validate",
				Kind:    "config",
				Message: "redis URL is required for the redis backend",
				Err:     ErrMissingConfiguration,
			}
		}
	case BackendMemory:
	default:
		return &MarketError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: fmt.Sprintf("unknown storage backend: %q", c.Storage.Backend),
			Err:     ErrInvalidConfiguration,
		}
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return &MarketError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: fmt.Sprintf("unknown log format: %q", c.Logging.Format),
			Err:     ErrInvalidConfiguration,
		}
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return &MarketError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: "telemetry endpoint is required when telemetry is enabled",
			Err:     ErrMissingConfiguration,
		}
	}

	if c.TopProducts < 1 {
		return &MarketError{
			Op:      "Config.Validate",
			Kind:    "config",
			Message: fmt.Sprintf("top products must be positive: %d", c.TopProducts),
			Err:     ErrInvalidConfiguration,
		}
	}

	for i, a := range c.Admins {
		if a.Username == "" || a.Password == "" {
			return &MarketError{
				Op:      "Config.Validate",
				Kind:    "config",
				Message: fmt.Sprintf("admin account %d needs a username and a password", i),
				Err:     ErrInvalidConfiguration,
			}
		}
	}

	return nil
}

// Logger returns the configured logger, building a SimpleLogger from the
// logging settings when none was injected.
func (c *Config) Logger() logger.Logger {
	if c.logger != nil {
		return c.logger
	}
	c.logger = logger.NewSimpleLogger(
		logger.WithService(c.Name),
		logger.WithLevel(c.Logging.Level),
		logger.WithFormat(c.Logging.Format),
	)
	return c.logger
}

// Helper functions

// parseBool converts a string to a boolean value.
// Accepts: "true", "1", "yes", "on" (case-insensitive) as true.
// Everything else is false.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// parseAdmins reads "user:pass,user:pass".
func parseAdmins(s string) ([]AdminAccount, error) {
	var admins []AdminAccount
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		user, pass, ok := strings.Cut(part, ":")
		if !ok || user == "" || pass == "" {
			return nil, &MarketError{
				Op:      "Config.LoadFromEnv",
				Kind:    "config",
				Message: "MYMARKET_ADMINS entries must look like user:password",
				Err:     ErrInvalidConfiguration,
			}
		}
		admins = append(admins, AdminAccount{Username: user, Password: pass})
	}
	return admins, nil
}

// Functional Options

// WithName sets the process name used by logs and traces.
func WithName(name string) Option {
	return func(c *Config) error {
		c.Name = name
		return nil
	}
}

// WithDataDir selects the file backend rooted at dir.
func WithDataDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return &MarketError{
				Op:      "WithDataDir",
				Kind:    "config",
				Message: "data directory must not be empty",
				Err:     ErrInvalidConfiguration,
			}
		}
		c.Storage.Backend = BackendFile
		c.Storage.DataDir = dir
		return nil
	}
}

// WithRedis selects the Redis backend.
func WithRedis(url, namespace string) Option {
	return func(c *Config) error {
		c.Storage.Backend = BackendRedis
		c.Storage.RedisURL = url
		if namespace != "" {
			c.Storage.Namespace = namespace
		}
		return nil
	}
}

// WithMemoryStorage keeps all artifacts in process. Nothing survives exit.
func WithMemoryStorage() Option {
	return func(c *Config) error {
		c.Storage.Backend = BackendMemory
		return nil
	}
}

// WithBackend injects an already built storage backend, overriding the
// storage settings.
func WithBackend(b storage.Backend) Option {
	return func(c *Config) error {
		c.backend = b
		return nil
	}
}

// WithLogLevel sets the minimum log level (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		c.Logging.Level = strings.ToLower(level)
		return nil
	}
}

// WithLogFormat sets the log output format (text or json).
func WithLogFormat(format string) Option {
	return func(c *Config) error {
		c.Logging.Format = strings.ToLower(format)
		return nil
	}
}

// WithLogger injects a logger, overriding the logging settings.
func WithLogger(l logger.Logger) Option {
	return func(c *Config) error {
		c.logger = l
		return nil
	}
}

// WithTelemetry enables tracing and metrics export to endpoint.
func WithTelemetry(enabled bool, endpoint string) Option {
	return func(c *Config) error {
		c.Telemetry.Enabled = enabled
		c.Telemetry.Endpoint = endpoint
		return nil
	}
}

// WithTelemetryProvider injects a telemetry implementation.
func WithTelemetryProvider(t telemetry.Telemetry) Option {
	return func(c *Config) error {
		c.telemetry = t
		return nil
	}
}

// WithClock overrides the time source used to stamp orders.
func WithClock(now func() time.Time) Option {
	return func(c *Config) error {
		c.clock = now
		return nil
	}
}

// WithAdmins replaces the administrator accounts.
func WithAdmins(admins ...AdminAccount) Option {
	return func(c *Config) error {
		c.Admins = append([]AdminAccount(nil), admins...)
		return nil
	}
}

// WithTopProducts sets the default length of the frequently-bought report.
func WithTopProducts(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return &MarketError{
				Op:      "WithTopProducts",
				Kind:    "config",
				Message: fmt.Sprintf("top products must be positive: %d", n),
				Err:     ErrInvalidConfiguration,
			}
		}
		c.TopProducts = n
		return nil
	}
}

// WithConfigFile loads a JSON or YAML file. Options after it override the
// file's values.
func WithConfigFile(path string) Option {
	return func(c *Config) error {
		return c.LoadFromFile(path)
	}
}

// NewConfig creates a new configuration with the given options.
// It applies defaults, loads from environment, applies options, and validates.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}

	// Functional options override env vars
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
