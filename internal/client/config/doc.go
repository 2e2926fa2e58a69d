// Package config loads runtime configuration for the gophauth CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file passed with --config.
//  3. Environment variables GOPHAUTH_SERVER, GOPHAUTH_TIMEOUT,
//     GOPHAUTH_SESSION_DIR and GOPHAUTH_GRPC.
//  4. Command-line flags, applied by the cli package on top of LoadConfig.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8001",
//	  "request_timeout": "10s",
//	  "session_dir": "/home/me/.config/gophauth",
//	  "grpc_address": "127.0.0.1:3200"
//	}
//
// An empty SessionDir is resolved by filex.SessionDir when the session store
// is opened.
package config
