// Package config loads runtime configuration for the farmclub client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, then FARMCLUB_* variables.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "strategy": "remote",
//	  "database_path": "farmclub.db",
//	  "request_timeout": "10s",
//	  "log_level": "info"
//	}
package config
