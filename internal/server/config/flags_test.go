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
		name     string
		args     []string
		start    *Config
		expected *Config
	}{
		{
			name: "all flags",
			args: []string{"cmd", "serve",
				"-a", "127.0.0.1:9090", "-g", "127.0.0.1:9091", "-d", "db", "-s", "secret",
				"-i", "iss", "-u", "aud", "-t", "60", "-w", "15", "-l", "debug", "-c", "ignored.json",
			},
			start: &Config{},
			expected: &Config{
				EndpointAddrHTTP:            "127.0.0.1:9090",
				EndpointAddrGRPC:            "127.0.0.1:9091",
				DatabaseDSN:                 "db",
				SecretKey:                   "secret",
				Issuer:                      "iss",
				Audience:                    "aud",
				AccessTokenValidityDuration: time.Hour,
				RefreshThreshold:            15 * time.Minute,
				LogLevel:                    "debug",
			},
		},
		{
			name:  "durations untouched when not passed",
			args:  []string{"cmd", "-s", "k"},
			start: &Config{AccessTokenValidityDuration: 90 * time.Second, RefreshThreshold: 30 * time.Second},
			expected: &Config{
				SecretKey:                   "k",
				AccessTokenValidityDuration: 90 * time.Second,
				RefreshThreshold:            30 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			cfg := tt.start
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseFlags_BadValuePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"cmd", "-t", "soon"}
	require.Panics(t, func() { parseFlags(&Config{}) })
}
