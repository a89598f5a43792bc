package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	bserrors "github.com/standardbeagle/blockscan/internal/errors"
)

// LoadTOML attempts to load configuration from the .blockscan.toml file in dir
func LoadTOML(dir string) (*Config, error) {
	tomlPath := filepath.Join(dir, TOMLFileName)

	content, err := os.ReadFile(tomlPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TOMLFileName, err)
	}

	cfg, err := parseTOML(content)
	if err != nil {
		return nil, err
	}
	cfg.Source = tomlPath
	return cfg, nil
}

// parseTOML decodes over the defaults, so absent keys keep their default values
func parseTOML(content []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, bserrors.NewConfigError("toml", "", fmt.Errorf("failed to parse TOML config: %w", err))
	}
	return cfg, nil
}
