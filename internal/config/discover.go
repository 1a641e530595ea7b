package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/castkeep/castkeep/internal/shared"
)

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	return shared.ConfigFile()
}

// Discover finds the config file using the standard search order.
// Search order:
//  1. CASTKEEP_CONFIG environment variable
//  2. ./config.toml (current directory)
//  3. $XDG_CONFIG_HOME/castkeep/config.toml
//  4. /etc/castkeep/config.toml
func Discover() (string, error) {
	if envPath := os.Getenv("CASTKEEP_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("CASTKEEP_CONFIG=%s: %w", envPath, err)
		}
		return envPath, nil
	}

	paths := []string{
		"./config.toml",
		DefaultPath(),
		"/etc/castkeep/config.toml",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("config not found, checked: %s", strings.Join(paths, ", "))
}
