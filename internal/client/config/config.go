package config

import (
	"fmt"
	"os"
	"time"
)

const (
	StrategyLocal  = "local"
	StrategyRemote = "remote"
)

// Config holds runtime settings for the farmclub client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the identity service (remote strategy).
//   - Strategy: credential store strategy, "local" or "remote".
//   - DatabasePath: SQLite file with local accounts, profiles and tokens.
//   - RequestTimeout: upper bound for each identity service call.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerEndpointAddr string
	Strategy           string
	DatabasePath       string
	RequestTimeout     time.Duration
	LogLevel           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.Strategy = StrategyLocal
	c.DatabasePath = "farmclub.db"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if c.Strategy != StrategyLocal && c.Strategy != StrategyRemote {
		return fmt.Errorf("unknown strategy %q (want %s or %s)", c.Strategy, StrategyLocal, StrategyRemote)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	parseJson(cfg)
	if err := parseFlags(cfg, os.Args[1:]); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
