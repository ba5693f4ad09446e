package config

import (
	"fmt"
	"os"
	"time"
)

// Cache backends selectable with CacheBackend.
const (
	BackendSQL    = "sql"
	BackendBadger = "badger"
)

// Config holds runtime settings shared by the CLI and the server.
type Config struct {
	DatabaseDSN  string        `envconfig:"DATABASE_DSN"`
	CacheBackend string        `envconfig:"CACHE_BACKEND"`
	BadgerDir    string        `envconfig:"BADGER_DIR"`
	CacheSize    int           `envconfig:"CACHE_SIZE"`
	HTTPAddr     string        `envconfig:"HTTP_ADDR"`
	SyncInterval time.Duration `envconfig:"SYNC_INTERVAL"`
	LogLevel     string        `envconfig:"LOG_LEVEL"`
	LogFormat    string        `envconfig:"LOG_FORMAT"`
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "usercache.db"
	c.CacheBackend = BackendSQL
	c.BadgerDir = ""
	c.CacheSize = 5
	c.HTTPAddr = ":8080"
	c.SyncInterval = 0
	c.LogLevel = "info"
	c.LogFormat = "auto"
}

// Validate reports settings no component can work with.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case BackendSQL, BackendBadger:
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache size must be positive, got %d", c.CacheSize)
	}
	if c.SyncInterval < 0 {
		return fmt.Errorf("sync interval must not be negative, got %s", c.SyncInterval)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database dsn must not be empty")
	}
	return nil
}

// LoadConfig builds a Config from defaults, the JSON file, the environment
// and os.Args. Malformed input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseEnv(cfg)
	parseFlags(cfg, os.Args[1:])
	return cfg
}
