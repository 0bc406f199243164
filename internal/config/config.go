package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "stepflow.yaml"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the CLI and server configuration.
type Config struct {
	// Catalog is the operator catalog file.
	Catalog string `yaml:"catalog"`
	// Validators lists external validate commands.
	Validators string `yaml:"validators"`
	// FlowsDir is a loam repository of flow documents.
	FlowsDir string `yaml:"flowsDir"`

	MinSteps       int `yaml:"minSteps"`
	MaxConcurrency int `yaml:"maxConcurrency"`

	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	Metrics         bool          `yaml:"metrics"`
}

// StoreConfig selects where the HTTP API keeps flows.
type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Dir     string      `yaml:"dir"`
	Redis   RedisConfig `yaml:"redis"`

	// EncryptionKey is a base64 AES-256 key. When set, flows are stored sealed.
	EncryptionKey string `yaml:"encryptionKey"`
	// FallbackKeys still decrypt flows sealed before a key rotation.
	FallbackKeys []string `yaml:"fallbackKeys"`
	// Redact lists regular expressions; matching parameter keys are masked on save.
	Redact []string `yaml:"redact"`
}

// RedisConfig configures the redis store and locker.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
			Metrics:         true,
		},
		Store: StoreConfig{
			Backend: StoreMemory,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
	}
}

// Load reads path over the defaults. A missing file is not an error when
// required is false.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Store.Backend) {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend))
	}
	if c.MinSteps < 0 {
		errs = append(errs, fmt.Errorf("minSteps: must not be negative"))
	}
	if c.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("maxConcurrency: must not be negative"))
	}
	if len(c.Store.FallbackKeys) > 0 && c.Store.EncryptionKey == "" {
		errs = append(errs, fmt.Errorf("store.fallbackKeys: requires store.encryptionKey"))
	}
	if c.Store.Redis.TTL < 0 {
		errs = append(errs, fmt.Errorf("store.redis.ttl: must not be negative"))
	}
	return errors.Join(errs...)
}
