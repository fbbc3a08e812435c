package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("expected missing config to be ignored, got %v", err)
	}
	if cfg.Cipher.Alphabet != nil || cfg.Crack.Reference != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `[cipher]
alphabet = "АБВ "
uppercase = false
seed = 7

[crack]
reference = "/tmp/ru.json"
alphabet-only = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Cipher.Alphabet == nil || *cfg.Cipher.Alphabet != "АБВ " {
		t.Fatalf("unexpected alphabet: %v", cfg.Cipher.Alphabet)
	}
	if cfg.Cipher.Uppercase == nil || *cfg.Cipher.Uppercase {
		t.Fatalf("expected uppercase=false")
	}
	if cfg.Cipher.Seed == nil || *cfg.Cipher.Seed != 7 {
		t.Fatalf("unexpected seed: %v", cfg.Cipher.Seed)
	}
	if cfg.Crack.Reference == nil || *cfg.Crack.Reference != "/tmp/ru.json" {
		t.Fatalf("unexpected reference: %v", cfg.Crack.Reference)
	}
	if cfg.Crack.AlphabetOnly == nil || !*cfg.Crack.AlphabetOnly {
		t.Fatalf("expected alphabet-only=true")
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[cipher]\nalphabett = \"AB\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "subcrack", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "subcrack", "subcrack.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultReferencePath("ru"); got != filepath.Join("/data", "subcrack", "reference", "ru.json") {
		t.Fatalf("unexpected reference path %q", got)
	}
}
