package commands

import (
	"os"
	"path/filepath"
)

// Flags holds the global CLI flags bound by the root command.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	Dir        string
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "quill", "config.yaml")
}

// DefaultDir returns the default corpus root: the current working
// directory, so `quill` run inside a notes directory just works.
func DefaultDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
