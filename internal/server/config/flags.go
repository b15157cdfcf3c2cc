package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/farmclub/internal/flagx"
)

var serverFlags = []string{
	"-a", "-d", "-s", "-t", "-r", "-w",
	"-R", "-P", "-n",
	"-u", "-p", "-b", "-g", "-e",
	"-l", "-o",
}

// parseFlags overlays config with the server flags found in args. Flags that
// belong to other loaders (such as -c) are skipped.
//
//	-a  gRPC listen address        -R  Redis address
//	-d  PostgreSQL DSN             -P  Redis password
//	-s  JWT signing key            -n  Redis database number
//	-t  access token TTL           -u  S3 access key
//	-r  refresh token TTL          -p  S3 secret key
//	-w  token sweep interval       -b  S3 bucket
//	-l  log level                  -g  S3 region
//	-o  log format (json|console)  -e  S3 endpoint
//
// TTLs and the sweep interval take Go durations, e.g. "15m" or "168h".
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("farmclub-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC listen address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT signing key")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token TTL")
	fs.DurationVar(&config.RefreshTokenValidityDuration, "r", config.RefreshTokenValidityDuration, "refresh token TTL")
	fs.DurationVar(&config.TokenSweepInterval, "w", config.TokenSweepInterval, "expired token sweep interval")

	fs.StringVar(&config.RedisAddr, "R", config.RedisAddr, "Redis address, empty keeps revocations in memory")
	fs.StringVar(&config.RedisPassword, "P", config.RedisPassword, "Redis password")
	fs.IntVar(&config.RedisDB, "n", config.RedisDB, "Redis database number")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket, empty disables image uploads")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 endpoint")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&config.LogFormat, "o", config.LogFormat, "log format (json|console)")

	return fs.Parse(flagx.FilterArgs(args, serverFlags))
}
