// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package config

import (
	"time"
)

// Config is the top-level configuration container for the sync daemon.
// It is populated by merging values from environment variables,
// command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type Config struct {
	// Remote holds the address and timeout settings of the remote sync
	// endpoint.
	Remote Remote `envPrefix:"REMOTE_"`

	// Storage holds settings for the local durable store backing the
	// offline queue and sync metadata.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds the retry policy applied to network operations.
	Sync Sync `envPrefix:"SYNC_"`

	// Workers holds settings for the background jobs: the periodic sync
	// trigger and the connectivity prober.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged under the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config
	// flag.
	JSONFilePath string `env:"CONFIG"`
}

// Remote holds network settings for the outbound sync transport.
type Remote struct {
	// Address is the remote endpoint in "host:port" format
	// (e.g. "sync.example.com:443"). A scheme is added by the transport
	// layer when absent.
	// Env: REMOTE_ADDRESS
	Address string `env:"ADDRESS"`

	// RequestTimeout is the per-request deadline for outbound calls
	// (e.g. "30s", "1m").
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage holds settings for the local key-value store.
type Storage struct {
	// Path is the SQLite database file backing the offline queue and the
	// sync metadata (e.g. "/var/lib/quillsync/state.db").
	// Env: STORAGE_PATH
	Path string `env:"PATH"`
}

// Sync holds the retry policy for network-class failures.
type Sync struct {
	// MaxRetries caps retry attempts per operation.
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// BackoffBase is the first retry delay; subsequent delays double.
	// Env: SYNC_BACKOFF_BASE
	BackoffBase time.Duration `env:"BACKOFF_BASE"`

	// BackoffCap bounds the exponential growth of retry delays.
	// Env: SYNC_BACKOFF_CAP
	BackoffCap time.Duration `env:"BACKOFF_CAP"`
}

// Workers holds configuration for the background worker processes.
type Workers struct {
	// SyncInterval defines how often the periodic sync job runs
	// (e.g. "5m").
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ProbeInterval defines how often the connectivity watcher probes
	// the remote endpoint (e.g. "30s").
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// GetConfig loads, merges, and validates the daemon configuration from
// all available sources in the following priority order (earlier sources
// win for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *Config or an error if any source fails to
// load or the final config fails validation.
func GetConfig() (*Config, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
