// Package config loads service settings from an optional YAML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath     = "STRUCTFLOW_CONFIG"
	DefaultConfigPath = "structflow.yaml"
)

var ErrUnknownDriver = errors.New("unknown database driver")

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	Logging  LoggingConfig  `yaml:"logging"`
	Bot      BotConfig      `yaml:"bot"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	TLSCert         string `yaml:"tls_cert"`
	TLSKey          string `yaml:"tls_key"`
	CORSOrigin      string `yaml:"cors_origin"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type AuthConfig struct {
	TokenKey   string  `yaml:"token_key"`
	RatePerSec float64 `yaml:"rate_per_sec"`
	Burst      int     `yaml:"burst"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type BotConfig struct {
	Token string `yaml:"token"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			CORSOrigin:      "*",
			ShutdownTimeout: "5s",
		},
		Auth:     AuthConfig{RatePerSec: 1, Burst: 3},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "structflow.db"},
		NATS:     NATSConfig{Subject: "structflow.results"},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads .env (if present), then the YAML file at path (if present), then
// applies environment overrides. An empty path uses STRUCTFLOW_CONFIG or the
// default file name.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	str := map[string]*string{
		"ADDR":             &c.Server.Addr,
		"TLS_CERT":         &c.Server.TLSCert,
		"TLS_KEY":          &c.Server.TLSKey,
		"CORS_ORIGIN":      &c.Server.CORSOrigin,
		"SHUTDOWN_TIMEOUT": &c.Server.ShutdownTimeout,
		"TOKEN_KEY":        &c.Auth.TokenKey,
		"DB_DRIVER":        &c.Database.Driver,
		"DATABASE_URL":     &c.Database.DSN,
		"NATS_URL":         &c.NATS.URL,
		"NATS_SUBJECT":     &c.NATS.Subject,
		"LOG_LEVEL":        &c.Logging.Level,
		"TOKEN_BOT":        &c.Bot.Token,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("LOG_DEV"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_DEV: %w", err)
		}
		c.Logging.Development = b
	}
	return nil
}

// ShutdownTimeout falls back to five seconds when unset or malformed.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

func (c *Config) TLSEnabled() bool {
	return c.Server.TLSCert != "" && c.Server.TLSKey != ""
}

// Validate checks the settings the HTTP service needs.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("%w %q", ErrUnknownDriver, c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.Auth.TokenKey == "" {
		errs = append(errs, errors.New("auth.token_key (TOKEN_KEY) is required"))
	}
	if c.Auth.RatePerSec <= 0 || c.Auth.Burst <= 0 {
		errs = append(errs, errors.New("auth.rate_per_sec and auth.burst must be positive"))
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout: %w", err))
	}
	return errors.Join(errs...)
}
