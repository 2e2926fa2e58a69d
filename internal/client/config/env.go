package config

import (
	"fmt"
	"os"
	"time"
)

func parseEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("GOPHAUTH_SERVER"); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := os.LookupEnv("GOPHAUTH_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GOPHAUTH_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := os.LookupEnv("GOPHAUTH_SESSION_DIR"); ok && v != "" {
		cfg.SessionDir = v
	}
	if v, ok := os.LookupEnv("GOPHAUTH_GRPC"); ok && v != "" {
		cfg.GRPCAddress = v
	}
	return nil
}
