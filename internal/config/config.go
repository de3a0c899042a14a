package config

import (
	"fmt"
	"os"
	"path/filepath"
	"vibroFmt/internal/logger"

	"github.com/BurntSushi/toml"
)

// InputDirEnv overrides scan.input_directory when set.
const InputDirEnv = "VIBROFMT_INPUT_DIR"

type Config struct {
	Scan   ScanConfig   `toml:"scan"`
	Format FormatConfig `toml:"format"`
}

type ScanConfig struct {
	InputDirectory  string `toml:"input_directory"`
	OutputDirectory string `toml:"output_directory"`
}

type FormatConfig struct {
	// Profile names a built-in layout ("v" or "u"). Which one is canonical
	// is still to be confirmed by the owner of the measurement files.
	Profile        string `toml:"profile"`
	ProfileFile    string `toml:"profile_file"`
	PruneThreshold int    `toml:"prune_threshold"`
}

func defaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			InputDirectory:  "data/input",
			OutputDirectory: "data/output",
		},
		Format: FormatConfig{
			Profile:        "v",
			PruneThreshold: 2,
		},
	}
}

// LoadConfig loads configuration from the specified config file path
func LoadConfig(configPath string) (*Config, error) {
	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		cfg := defaultConfig()
		if err := SaveConfig(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		logger.Info("Created default config file", "path", configPath)
		cfg.applyEnv()
		return cfg, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	// Set defaults if missing
	defaults := defaultConfig()
	if cfg.Scan.InputDirectory == "" {
		cfg.Scan.InputDirectory = defaults.Scan.InputDirectory
	}
	if cfg.Scan.OutputDirectory == "" {
		cfg.Scan.OutputDirectory = defaults.Scan.OutputDirectory
	}
	if cfg.Format.Profile == "" {
		cfg.Format.Profile = defaults.Format.Profile
	}
	if cfg.Format.PruneThreshold == 0 {
		cfg.Format.PruneThreshold = defaults.Format.PruneThreshold
	}

	cfg.applyEnv()
	logger.Info("Loaded configuration", "path", configPath)
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if dir := os.Getenv(InputDirEnv); dir != "" {
		logger.Info("Input directory overridden from environment", "env", InputDirEnv, "dir", dir)
		c.Scan.InputDirectory = dir
	}
}

// SaveConfig saves configuration to the specified config file path
func SaveConfig(configPath string, config *Config) error {
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	logger.Info("Saved configuration", "path", configPath)
	return nil
}
