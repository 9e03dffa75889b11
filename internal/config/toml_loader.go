package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// TomlConfigLoader locates and decodes .projcodes.toml files
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// FindConfig walks up the directory tree from startDir to find .projcodes.toml
func (l *TomlConfigLoader) FindConfig(startDir string) (string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// Decode parses TOML on top of the defaults; keys absent from data keep
// their default values
func (l *TomlConfigLoader) Decode(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
