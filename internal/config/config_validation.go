// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillnote Authors

package config

// validate checks that the final merged [Config] satisfies the daemon's
// startup invariants.
//
// Returns nil if the configuration is valid, or a descriptive error
// otherwise. Retry policy fields are not validated here: zero values fall
// back to the orchestrator's defaults.
func (cfg *Config) validate() error {
	if cfg.Remote.Address == "" || cfg.Remote.RequestTimeout == 0 {
		return ErrInvalidRemoteConfigs
	}

	if cfg.Storage.Path == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Workers.SyncInterval == 0 || cfg.Workers.ProbeInterval == 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
