// Package config loads wordvec CLI settings from ~/.config/wordvec/config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config stores CLI defaults. Command-line flags override every field.
type Config struct {
	Vectors VectorsConfig `yaml:"vectors"`
	Backoff BackoffConfig `yaml:"backoff"`
	Search  SearchConfig  `yaml:"search"`
}

// VectorsConfig names the primary vector file.
type VectorsConfig struct {
	Path      string `yaml:"path"`
	Format    string `yaml:"format"`
	Precision string `yaml:"precision"`
	// Vocab, when set, marks Path as a constrained vector file whose terms
	// live in this separate vocab file.
	Vocab string `yaml:"vocab"`
	// Candidates restricts a constrained load to the terms listed here.
	Candidates string `yaml:"candidates"`
	// Normalize is a Unicode normalization form applied to looked-up terms
	// ("nfc", "nfkc" or empty).
	Normalize string `yaml:"normalize"`
}

// BackoffConfig names an optional word-level source for token averaging.
// A path ending in .db is opened as a vecdb table.
type BackoffConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// SearchConfig holds ranking defaults.
type SearchConfig struct {
	TopK    int `yaml:"top_k"`
	Workers int `yaml:"workers"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Vectors: VectorsConfig{Format: "bin", Precision: "auto"},
		Backoff: BackoffConfig{Format: "bin"},
		Search:  SearchConfig{TopK: 10},
	}
}

// HasBackoff reports whether a backoff source is configured.
func (c *Config) HasBackoff() bool {
	return c.Backoff.Path != ""
}

// Path returns the default config file path.
func Path() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "wordvec", "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// Load reads the config at path, or at Path() when path is empty. A missing
// file yields Default(); fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = Path(); err != nil {
			return nil, err
		}
	}
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.expand(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) expand() error {
	var err error
	for _, p := range []*string{&c.Vectors.Path, &c.Vectors.Vocab, &c.Vectors.Candidates} {
		if *p, err = ExpandPath(*p); err != nil {
			return err
		}
	}
	c.Backoff.Path, err = ExpandPath(c.Backoff.Path)
	return err
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
