// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Cipher CipherConfig `toml:"cipher"`
	Crack  CrackConfig  `toml:"crack"`
}

// CipherConfig maps key generation and text preparation settings.
type CipherConfig struct {
	Alphabet  *string `toml:"alphabet"`
	Uppercase *bool   `toml:"uppercase"`
	Seed      *int64  `toml:"seed"`
}

// CrackConfig maps frequency-attack settings.
type CrackConfig struct {
	Reference    *string `toml:"reference"`
	AlphabetOnly *bool   `toml:"alphabet-only"`
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
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
