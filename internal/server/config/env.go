package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvGRPCAddr           = "FARMCLUB_GRPC_ADDR"
	EnvDatabaseDSN        = "FARMCLUB_DATABASE_DSN"
	EnvSecretKey          = "FARMCLUB_SECRET_KEY"
	EnvAccessTokenTTL     = "FARMCLUB_ACCESS_TOKEN_TTL"
	EnvRefreshTokenTTL    = "FARMCLUB_REFRESH_TOKEN_TTL"
	EnvRedisAddr          = "FARMCLUB_REDIS_ADDR"
	EnvRedisPassword      = "FARMCLUB_REDIS_PASSWORD"
	EnvRedisDB            = "FARMCLUB_REDIS_DB"
	EnvS3User             = "FARMCLUB_S3_USER"
	EnvS3Password         = "FARMCLUB_S3_PASSWORD"
	EnvS3Bucket           = "FARMCLUB_S3_BUCKET"
	EnvS3Region           = "FARMCLUB_S3_REGION"
	EnvS3Endpoint         = "FARMCLUB_S3_ENDPOINT"
	EnvLogLevel           = "FARMCLUB_LOG_LEVEL"
	EnvLogFormat          = "FARMCLUB_LOG_FORMAT"
	EnvTokenSweepInterval = "FARMCLUB_TOKEN_SWEEP_INTERVAL"
)

// dotEnvFile is loaded, if present, before reading the environment.
var dotEnvFile = ".env"

func parseEnv(cfg *Config) error {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", dotEnvFile, err)
	}

	strs := map[string]*string{
		EnvGRPCAddr:      &cfg.EndpointAddrGRPC,
		EnvDatabaseDSN:   &cfg.DatabaseDSN,
		EnvSecretKey:     &cfg.SecretKey,
		EnvRedisAddr:     &cfg.RedisAddr,
		EnvRedisPassword: &cfg.RedisPassword,
		EnvS3User:        &cfg.S3RootUser,
		EnvS3Password:    &cfg.S3RootPassword,
		EnvS3Bucket:      &cfg.S3Bucket,
		EnvS3Region:      &cfg.S3Region,
		EnvS3Endpoint:    &cfg.S3BaseEndpoint,
		EnvLogLevel:      &cfg.LogLevel,
		EnvLogFormat:     &cfg.LogFormat,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		EnvAccessTokenTTL:     &cfg.AccessTokenValidityDuration,
		EnvRefreshTokenTTL:    &cfg.RefreshTokenValidityDuration,
		EnvTokenSweepInterval: &cfg.TokenSweepInterval,
	}
	for name, dst := range durations {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}

	if v, ok := os.LookupEnv(EnvRedisDB); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRedisDB, err)
		}
		cfg.RedisDB = n
	}
	return nil
}
