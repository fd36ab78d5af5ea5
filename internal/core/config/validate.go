package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("corpus directory cannot be empty")
	}

	if !strings.HasPrefix(c.Extension, ".") {
		return fmt.Errorf("extension must start with a dot, got %q", c.Extension)
	}

	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size cannot be negative")
	}

	if c.ContextLines < 0 {
		return fmt.Errorf("context_lines cannot be negative")
	}

	for i, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("exclude[%d]: invalid glob pattern %q", i, pattern)
		}
	}

	return nil
}

// ValidateDeep performs comprehensive validation including filesystem
// access checks. This calls Validate() first for structural validation,
// then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("dir", c.Dir, isDirectory),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func isDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
