// Package config handles configuration loading and validation for quill.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	// Extension selects eligible corpus documents, including the dot.
	Extension string `yaml:"extension"`
	// Exclude holds doublestar glob patterns matched against
	// corpus-relative paths; matching files are skipped by the scanner.
	Exclude []string `yaml:"exclude"`
	// ReservedDir is the metadata subdirectory excluded from scans.
	ReservedDir string `yaml:"reserved_dir"`
	// MaxFileSize caps the size of a document the write-back engine
	// will open, in bytes. 0 disables the guard.
	MaxFileSize int64 `yaml:"max_file_size"`
	// ContextLines controls how many surrounding lines feed each
	// todo's context excerpt.
	ContextLines int `yaml:"context_lines"`

	Watcher WatcherConfig `yaml:"watcher"`
	Server  ServerConfig  `yaml:"server"`

	// Dir is the corpus root. Set by the caller, not from the config file.
	Dir string `yaml:"-"`
}

// WatcherConfig tunes the filesystem rescan trigger.
type WatcherConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Extension:    ".md",
		ReservedDir:  ".quill",
		MaxFileSize:  10 << 20,
		ContextLines: 2,
		Watcher:      WatcherConfig{Debounce: 200 * time.Millisecond},
		Server:       ServerConfig{Addr: "127.0.0.1:8401"},
	}
}

// Load reads configuration from the given path and sets the corpus root.
// If configPath is empty or doesn't exist, returns defaults with the
// provided dir.
func Load(configPath, dir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Dir = dir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dir since Unmarshal may have cleared it
			cfg.Dir = dir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Extension == "" {
		c.Extension = defaults.Extension
	}
	if c.ReservedDir == "" {
		c.ReservedDir = defaults.ReservedDir
	}
	if c.Watcher.Debounce == 0 {
		c.Watcher.Debounce = defaults.Watcher.Debounce
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
}
