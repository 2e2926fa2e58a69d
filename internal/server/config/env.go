package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from the process environment. A .env file in the
// working directory is loaded first when present; variables already set in
// the environment win over the file.
//
// Durations accept Go syntax ("30m") or a bare number of minutes.
// Malformed numeric values panic.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	lookupString(&config.HTTPAddr, "HTTP_ADDR")
	lookupString(&config.GRPCAddr, "GRPC_ADDR")
	lookupString(&config.DatabaseDSN, "DATABASE_URL")
	lookupString(&config.SecretKey, "SECRET_KEY")
	lookupDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	lookupDuration(&config.ResetTokenValidityDuration, "RESET_TOKEN_TTL")

	if v, ok := os.LookupEnv("BCRYPT_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("BCRYPT_COST: %w", err))
		}
		config.BcryptCost = n
	}

	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok && v != "" {
		config.AllowedOrigins = splitList(v)
	}

	lookupString(&config.PublicBaseURL, "PUBLIC_BASE_URL")

	if v, ok := os.LookupEnv("DEV_EXPOSE_RESET_LINK"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("DEV_EXPOSE_RESET_LINK: %w", err))
		}
		config.DevExposeResetLink = b
	}

	lookupString(&config.S3RootUser, "S3_ROOT_USER")
	lookupString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	lookupString(&config.S3Bucket, "S3_BUCKET")
	lookupString(&config.S3Region, "S3_REGION")
	lookupString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	lookupString(&config.LogLevel, "LOG_LEVEL")
}

func lookupString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func lookupDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(n) * time.Minute
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
