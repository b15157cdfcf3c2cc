package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvServerAddr     = "FARMCLUB_SERVER_ADDR"
	EnvStrategy       = "FARMCLUB_STRATEGY"
	EnvDatabasePath   = "FARMCLUB_DB_PATH"
	EnvRequestTimeout = "FARMCLUB_REQUEST_TIMEOUT"
	EnvLogLevel       = "FARMCLUB_LOG_LEVEL"
)

// dotEnvFile is loaded, if present, before reading the environment.
// Variables already set in the environment are not overridden.
var dotEnvFile = ".env"

func parseEnv(cfg *Config) error {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", dotEnvFile, err)
	}

	if v, ok := os.LookupEnv(EnvServerAddr); ok {
		cfg.ServerEndpointAddr = v
	}
	if v, ok := os.LookupEnv(EnvStrategy); ok {
		cfg.Strategy = v
	}
	if v, ok := os.LookupEnv(EnvDatabasePath); ok {
		cfg.DatabasePath = v
	}
	if v, ok := os.LookupEnv(EnvRequestTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	return nil
}
