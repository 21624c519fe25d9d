/*
Package config loads the settlement server configuration.

SOURCES (later wins):
  1. Default()
  2. YAML file passed to Load (optional)
  3. Environment variables, after loading a .env file if one exists
  4. CLI flags, applied by cmd/server

ENVIRONMENT:
  SETTLEMENT_ADDR          listen address (":8080")
  SETTLEMENT_DB_DRIVER     sqlite | postgres | memory
  SETTLEMENT_SQLITE_PATH   SQLite file path
  DATABASE_URL             PostgreSQL connection string
  SETTLEMENT_LOG_LEVEL     debug | info | warn | error
  SETTLEMENT_LOG_FORMAT    console | json
  SETTLEMENT_CORS_ORIGINS  comma-separated allowed origins
  SETTLEMENT_DEMO          enable the demo scenario endpoints
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Addr        string         `yaml:"addr"`
	Database    DatabaseConfig `yaml:"database"`
	Log         LogConfig      `yaml:"log"`
	CORSOrigins []string       `yaml:"cors_origins"`
	Demo        bool           `yaml:"demo"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
	URL        string `yaml:"url"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Addr: ":8080",
		Database: DatabaseConfig{
			Driver:     DriverSQLite,
			SQLitePath: "./settlement.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		CORSOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		Demo:        true,
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and the environment. The result is validated.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Addr = getEnv("SETTLEMENT_ADDR", c.Addr)
	c.Database.Driver = getEnv("SETTLEMENT_DB_DRIVER", c.Database.Driver)
	c.Database.SQLitePath = getEnv("SETTLEMENT_SQLITE_PATH", c.Database.SQLitePath)
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Log.Level = getEnv("SETTLEMENT_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("SETTLEMENT_LOG_FORMAT", c.Log.Format)
	if origins := getEnv("SETTLEMENT_CORS_ORIGINS", ""); origins != "" {
		c.CORSOrigins = splitList(origins)
	}
	c.Demo = getEnvBool("SETTLEMENT_DEMO", c.Demo)
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url (or DATABASE_URL) is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// NewLogger builds the process logger: the development encoder for
// "console", the production JSON encoder otherwise.
func (l LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	var zc zap.Config
	if l.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
