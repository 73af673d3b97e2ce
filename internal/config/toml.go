// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// FileConfig represents the TOML configuration file. Pointer fields stay nil
// when a key is absent so built-in defaults apply.
type FileConfig struct {
	Train  TrainSection  `toml:"train"`
	Store  StoreSection  `toml:"store"`
	Speech SpeechSection `toml:"speech"`
	Vocab  VocabSection  `toml:"vocab"`
}

// TrainSection maps dataset and forest settings.
type TrainSection struct {
	Examples     *int     `toml:"examples"`
	Noise        *int     `toml:"noise"`
	Trees        *int     `toml:"trees"`
	TestFraction *float64 `toml:"test-fraction"`
	SplitSeed    *int64   `toml:"split-seed"`
	ForestSeed   *int64   `toml:"forest-seed"`
	DataSeed     *int64   `toml:"data-seed"`
}

// StoreSection selects the model store.
type StoreSection struct {
	Backend   *string `toml:"backend"`
	ModelPath *string `toml:"model-path"`
}

// SpeechSection configures word announcements.
type SpeechSection struct {
	Enabled *bool   `toml:"enabled"`
	Synth   *string `toml:"synth"`
	Play    *string `toml:"play"`
}

// VocabSection points at a custom word list.
type VocabSection struct {
	Path *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

func (c FileConfig) validate() error {
	if b := c.Store.Backend; b != nil && *b != BackendSQLite && *b != BackendFile {
		return fmt.Errorf("store.backend must be %q or %q, got %q", BackendSQLite, BackendFile, *b)
	}
	return nil
}
