package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type jsonConfig struct {
	Remote struct {
		Address        string   `json:"address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"remote,omitempty"`

	Storage struct {
		Path string `json:"path"`
	} `json:"storage,omitempty"`

	Sync struct {
		MaxRetries  int      `json:"max_retries"`
		BackoffBase Duration `json:"backoff_base"`
		BackoffCap  Duration `json:"backoff_cap"`
	} `json:"sync,omitempty"`

	Workers struct {
		SyncInterval  Duration `json:"sync_interval"`
		ProbeInterval Duration `json:"probe_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*Config, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg jsonConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &Config{
		Remote: Remote{
			Address:        jsonCfg.Remote.Address,
			RequestTimeout: time.Duration(jsonCfg.Remote.RequestTimeout),
		},
		Storage: Storage{
			Path: jsonCfg.Storage.Path,
		},
		Sync: Sync{
			MaxRetries:  jsonCfg.Sync.MaxRetries,
			BackoffBase: time.Duration(jsonCfg.Sync.BackoffBase),
			BackoffCap:  time.Duration(jsonCfg.Sync.BackoffCap),
		},
		Workers: Workers{
			SyncInterval:  time.Duration(jsonCfg.Workers.SyncInterval),
			ProbeInterval: time.Duration(jsonCfg.Workers.ProbeInterval),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON
// unmarshaling from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
