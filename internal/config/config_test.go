package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Train.Trees != nil || cfg.Store.Backend != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := writeConfig(t, `
[train]
examples = 20
noise = 150
test-fraction = 0.25
data-seed = 7

[store]
backend = "file"
model-path = "/tmp/model.msgpack"

[speech]
enabled = true
play = "paplay {file}"

[vocab]
path = "words.txt"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Train.Examples == nil || *cfg.Train.Examples != 20 {
		t.Fatalf("unexpected examples: %v", cfg.Train.Examples)
	}
	if cfg.Train.Trees != nil {
		t.Fatalf("absent key should stay nil")
	}
	if cfg.Train.TestFraction == nil || *cfg.Train.TestFraction != 0.25 {
		t.Fatalf("unexpected test fraction")
	}
	if cfg.Train.DataSeed == nil || *cfg.Train.DataSeed != 7 {
		t.Fatalf("unexpected data seed")
	}
	if *cfg.Store.Backend != BackendFile || *cfg.Store.ModelPath != "/tmp/model.msgpack" {
		t.Fatalf("unexpected store section: %+v", cfg.Store)
	}
	if !*cfg.Speech.Enabled || cfg.Speech.Synth != nil || *cfg.Speech.Play != "paplay {file}" {
		t.Fatalf("unexpected speech section")
	}
	if *cfg.Vocab.Path != "words.txt" {
		t.Fatalf("unexpected vocab path")
	}
}

func TestLoadConfigRejectsUnknownKeysAndBackend(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[train]\ntrees = 10\ndepth = 3\n"))
	if err == nil || !strings.Contains(err.Error(), "train.depth") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
	_, err = LoadConfig(writeConfig(t, "[store]\nbackend = \"redis\"\n"))
	if err == nil || !strings.Contains(err.Error(), "store.backend") {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "signglove", "config.toml") {
		t.Fatalf("unexpected config path %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "signglove", "signglove.db") {
		t.Fatalf("unexpected db path %s", got)
	}
	if got := DefaultModelPath(); got != filepath.Join("/data", "signglove", "gesture_model.msgpack") {
		t.Fatalf("unexpected model path %s", got)
	}
}
