package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		start       *Config
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-g", ":9091", "-d", "db", "-s", "secret",
				"-t", "60", "-r", "15", "-b", "12", "-o", "http://a.test, http://b.test", "-u", "http://front.test",
			},
			start: &Config{},
			expected: &Config{
				HTTPAddr:                    "127.0.0.1:9090",
				GRPCAddr:                    ":9091",
				DatabaseDSN:                 "db",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: time.Hour,
				ResetTokenValidityDuration:  15 * time.Minute,
				BcryptCost:                  12,
				AllowedOrigins:              []string{"http://a.test", "http://b.test"},
				PublicBaseURL:               "http://front.test",
			},
		},
		{
			name:  "absent flags keep sub-minute values",
			args:  []string{"cmd", "-a", ":1"},
			start: &Config{ResetTokenValidityDuration: 30 * time.Second, AllowedOrigins: []string{"x"}},
			expected: &Config{
				HTTPAddr:                   ":1",
				ResetTokenValidityDuration: 30 * time.Second,
				AllowedOrigins:             []string{"x"},
			},
		},
		{
			name:        "bad int panics",
			args:        []string{"cmd", "-t", "soon"},
			start:       &Config{},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := tt.start

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
