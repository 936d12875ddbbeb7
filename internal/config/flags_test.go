package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNetAddress_String tests the String method of NetAddress
func TestNetAddress_String(t *testing.T) {
	tests := []struct {
		name     string
		addr     NetAddress
		expected string
	}{
		{
			name:     "empty address",
			addr:     NetAddress{},
			expected: "",
		},
		{
			name:     "localhost with port",
			addr:     NetAddress{Host: "localhost", Port: 8080},
			expected: "localhost:8080",
		},
		{
			name:     "IP address with port",
			addr:     NetAddress{Host: "127.0.0.1", Port: 9090},
			expected: "127.0.0.1:9090",
		},
		{
			name:     "DNS name with port",
			addr:     NetAddress{Host: "sync.example.com", Port: 443},
			expected: "sync.example.com:443",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.addr.String()
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestNetAddress_Set tests the Set method of NetAddress
func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectError  bool
		errorMsg     string
		expectedAddr NetAddress
	}{
		{
			name:         "valid localhost",
			input:        "localhost:8080",
			expectError:  false,
			expectedAddr: NetAddress{Host: "localhost", Port: 8080},
		},
		{
			name:         "valid IPv4",
			input:        "127.0.0.1:9090",
			expectError:  false,
			expectedAddr: NetAddress{Host: "127.0.0.1", Port: 9090},
		},
		{
			name:         "valid DNS name",
			input:        "sync.example.com:443",
			expectError:  false,
			expectedAddr: NetAddress{Host: "sync.example.com", Port: 443},
		},
		{
			name:        "missing colon",
			input:       "localhost8080",
			expectError: true,
			errorMsg:    "need address in a form `host:port`",
		},
		{
			name:        "non-numeric port",
			input:       "localhost:http",
			expectError: true,
			errorMsg:    "invalid syntax",
		},
		{
			name:        "zero port",
			input:       "localhost:0",
			expectError: true,
			errorMsg:    "port number is a positive integer",
		},
		{
			name:        "malformed numeric host",
			input:       "300.1:8080",
			expectError: true,
			errorMsg:    "incorrect IP-address provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := &NetAddress{}
			err := addr.Set(tt.input)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedAddr.Host, addr.Host)
				assert.Equal(t, tt.expectedAddr.Port, addr.Port)
			}
		})
	}
}

// TestParseFlags tests the ParseFlags function
func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "all flags set",
			args: []string{
				"-a", "localhost:8080",
				"-s", "/var/lib/quillsync/state.db",
				"-c", "/path/to/config.json",
				"-request-timeout", "30s",
				"-sync-interval", "5m",
				"-probe-interval", "30s",
				"-max-retries", "5",
				"-backoff-base", "500ms",
				"-backoff-cap", "30s",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost:8080", cfg.Remote.Address)
				assert.Equal(t, 30*time.Second, cfg.Remote.RequestTimeout)
				assert.Equal(t, "/var/lib/quillsync/state.db", cfg.Storage.Path)
				assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)
				assert.Equal(t, 5*time.Minute, cfg.Workers.SyncInterval)
				assert.Equal(t, 30*time.Second, cfg.Workers.ProbeInterval)
				assert.Equal(t, 5, cfg.Sync.MaxRetries)
				assert.Equal(t, 500*time.Millisecond, cfg.Sync.BackoffBase)
				assert.Equal(t, 30*time.Second, cfg.Sync.BackoffCap)
			},
		},
		{
			name: "config alias flag",
			args: []string{
				"-config", "/path/to/config.json",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)
			},
		},
		{
			name: "partial flags",
			args: []string{
				"-a", "127.0.0.1:3000",
				"-s", "state.db",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "127.0.0.1:3000", cfg.Remote.Address)
				assert.Equal(t, "state.db", cfg.Storage.Path)
				assert.Zero(t, cfg.Remote.RequestTimeout)
				assert.Empty(t, cfg.JSONFilePath)
			},
		},
		{
			name: "no flags",
			args: []string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.Remote.Address)
				assert.Empty(t, cfg.Storage.Path)
				assert.Empty(t, cfg.JSONFilePath)
				assert.Zero(t, cfg.Sync.MaxRetries)
				assert.Zero(t, cfg.Workers.SyncInterval)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset flag.CommandLine for each test
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

			// Set os.Args to simulate command line arguments
			oldArgs := os.Args
			os.Args = append([]string{"cmd"}, tt.args...)
			defer func() { os.Args = oldArgs }()

			cfg := ParseFlags()
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}
