package config

import "time"

// Config holds runtime settings for the gophauth CLI.
//
// Fields:
//   - ServerURL: base URL of the HTTP API.
//   - RequestTimeout: per-request timeout.
//   - SessionDir: where the session database lives; empty means the default.
//   - GRPCAddress: when set, commands go over gRPC to this address instead
//     of the HTTP API.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	SessionDir     string
	GRPCAddress    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8001"
	c.RequestTimeout = 10 * time.Second
	c.SessionDir = ""
	c.GRPCAddress = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the JSON file at jsonPath (when not empty) and the environment. Later
// sources take precedence over earlier ones.
func LoadConfig(jsonPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, jsonPath); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
