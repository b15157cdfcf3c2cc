package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/farmclub/internal/flagx"
)

// parseFlags reads the client flags from args:
//
//	-a  identity service address
//	-m  credential store strategy, local or remote
//	-f  local SQLite database
//	-t  per-call timeout, e.g. "10s"
//	-l  log level
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("farmclub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "identity service address")
	fs.StringVar(&cfg.Strategy, "m", cfg.Strategy, "credential store strategy (local|remote)")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database file")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")

	return fs.Parse(flagx.FilterArgs(args, []string{"-a", "-m", "-f", "-t", "-l"}))
}
