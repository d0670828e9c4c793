package queuectl_test

import (
	"os"
	"path/filepath"
	"testing"

	qc "github.com/p-v-srinag/queuectl"
)

func TestLoadConfigCreatesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := qc.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != qc.DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}
}

func TestLoadConfigResetsOnCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := qc.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != qc.DefaultConfig() {
		t.Fatalf("expected corrupted config to reset to defaults, got %+v", cfg)
	}
}

func TestSetConfigValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	if err := qc.SetConfigValue(path, "max_retries", "7"); err != nil {
		t.Fatal(err)
	}
	cfg, err := qc.LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxRetries != 7 {
		t.Fatalf("expected max_retries=7, got %d", cfg.MaxRetries)
	}
}

func TestSetConfigValueUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	err := qc.SetConfigValue(path, "nonsense", "1")
	if err == nil {
		t.Fatal("expected an error for an unknown config key")
	}
}

func TestSetConfigValueBadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	err := qc.SetConfigValue(path, "backoff_base", "not-a-number")
	if err == nil {
		t.Fatal("expected an error for a non-numeric config value")
	}
}
