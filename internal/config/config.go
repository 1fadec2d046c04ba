package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lspinstall/internal/pip"
)

// Config captures the installer settings stored in config.yaml.
type Config struct {
	Version        int       `yaml:"version" json:"version"`
	InstallRoot    string    `yaml:"install_root,omitempty" json:"install_root,omitempty"`
	MaxConcurrency int       `yaml:"max_concurrency" json:"max_concurrency"`
	Log            LogConfig `yaml:"log" json:"log"`
	Pip            PipConfig `yaml:"pip" json:"pip"`
}

// LogConfig controls the per-run log file.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// PipConfig holds the settings handed to the pip installer.
type PipConfig struct {
	InstallArgs []string `yaml:"install_args" json:"install_args"`
	Python      string   `yaml:"python,omitempty" json:"python,omitempty"`
	UpgradePip  bool     `yaml:"upgrade_pip" json:"upgrade_pip"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version:        1,
		MaxConcurrency: 4,
		Log: LogConfig{
			Level: "info",
		},
		Pip: PipConfig{
			InstallArgs: []string{},
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills fields the YAML left zero.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = defaults.MaxConcurrency
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Pip.InstallArgs == nil {
		c.Pip.InstallArgs = defaults.Pip.InstallArgs
	}
}

// Concurrency returns the effective fan-out limit, never less than one.
func (c Config) Concurrency() int {
	if c.MaxConcurrency < 1 {
		return 1
	}
	return c.MaxConcurrency
}

// PipSettings converts the pip section into installer settings.
func (c Config) PipSettings() pip.Settings {
	return pip.Settings{
		InstallArgs: append([]string(nil), c.Pip.InstallArgs...),
		Python:      c.Pip.Python,
		UpgradePip:  c.Pip.UpgradePip,
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

// Save writes the configuration to path.
func (c Config) Save(path string) error {
	buf, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
