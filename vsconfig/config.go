package vsconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the CLI's global configuration, read from
// $XDG_CONFIG_HOME/vsmark/config.yaml (or ~/.config/vsmark/config.yaml).
type Config struct {
	// DefaultSigner is used when --signer is not given.
	DefaultSigner string `yaml:"default_signer,omitempty"`
	// KeysDir holds the PEM keypairs. Defaults to the config dir's
	// keys/ subdirectory.
	KeysDir string `yaml:"keys_dir,omitempty"`
	// KeyringPath is the known-signers yaml file. Defaults to
	// keyring.yaml next to the config file.
	KeyringPath string `yaml:"keyring_path,omitempty"`
	// KeyserverURL, when set, adds an HTTP resolver to the verify
	// chain.
	KeyserverURL string `yaml:"keyserver_url,omitempty"`
}

// DefaultConfigPath returns the platform-appropriate config file path,
// respecting XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			base = "."
		} else {
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, "vsmark")
}

// Load reads the config at path, or the default path when path is
// empty. A missing file yields a config with all defaults applied.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	dir := filepath.Dir(path)
	if cfg.KeysDir == "" {
		cfg.KeysDir = filepath.Join(dir, "keys")
	}
	if cfg.KeyringPath == "" {
		cfg.KeyringPath = filepath.Join(dir, "keyring.yaml")
	}
	if v := os.Getenv("VSMARK_KEYSERVER_URL"); v != "" {
		cfg.KeyserverURL = v
	}
	if v := os.Getenv("VSMARK_SIGNER"); v != "" {
		cfg.DefaultSigner = v
	}
	return &cfg, nil
}

// Save writes the config to path (default path when empty), creating
// parent directories as needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return atomicWriteFile(path, data, 0o644)
}
