// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package xdg provides XDG Base Directory paths for Tollgate.
package xdg

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "tollgate"

// ConfigDir returns the XDG config directory for tollgate.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// CertsDir returns the TLS certificates directory.
func CertsDir() string {
	return filepath.Join(ConfigDir(), "certs")
}

// DefaultConfigFile returns the path of the default config file if one exists
// in the XDG config directory, or "" when absent.
func DefaultConfigFile() string {
	path := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// EnsureDir creates a directory and all parent directories if they don't exist.
// Directories are created with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
