// Package config loads and saves the analysis driver's settings, mirroring
// the teacher repo's TOML-backed configuration mechanism but repurposed for
// an abstract-interpretation walk rather than a concrete emulator run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the analysis driver's configuration.
type Config struct {
	// Analysis settings controlling the CFG walk itself.
	Analysis struct {
		MaxSteps       uint64 `toml:"max_steps"`
		SDABase        uint32 `toml:"sda_base"`
		SDA2Base       uint32 `toml:"sda2_base"`
		SeedSDA        bool   `toml:"seed_sda"`
		MaxJumpTableSz uint32 `toml:"max_jump_table_size"` // stored and saved; the CFG walk does not read it
	} `toml:"analysis"`

	// Trace settings controlling StepResult recording.
	Trace struct {
		OutputFile string `toml:"output_file"`
		Format     string `toml:"format"` // text, json
		MaxEntries int    `toml:"max_entries"`
	} `toml:"trace"`

	// Display settings for the TUI inspector.
	Display struct {
		ColorOutput  bool   `toml:"color_output"`
		NumberFormat string `toml:"number_format"` // hex, dec
	} `toml:"display"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Analysis.MaxSteps = 2000000
	cfg.Analysis.SeedSDA = false
	cfg.Analysis.MaxJumpTableSz = 1 << 20

	cfg.Trace.OutputFile = "trace.log"
	cfg.Trace.Format = "text"
	cfg.Trace.MaxEntries = 100000

	cfg.Display.ColorOutput = true
	cfg.Display.NumberFormat = "hex"

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "ppc750vm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "ppc750vm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file. A missing file is
// not an error: the defaults are returned instead.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
