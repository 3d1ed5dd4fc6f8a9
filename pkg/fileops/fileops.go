// Package fileops provides the small set of filesystem helpers the rest of
// the tool relies on: user-path expansion, existence probes and basic path
// sanity checks. All functions are side-effect free unless noted.
package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading "~/" to the user's home directory and any
// "$VAR" / "${VAR}" references to their environment values. Paths that need
// neither are returned unchanged.
func ExpandPath(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if strings.ContainsRune(path, '$') {
		path = os.ExpandEnv(path)
	}
	return path
}

// Exists reports whether the path exists at all, file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DirExists reports whether the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Absolute expands and cleans the path and resolves it to an absolute path.
func Absolute(path string) (string, error) {
	expanded := filepath.Clean(ExpandPath(strings.TrimSpace(path)))
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("cannot resolve absolute path: %w", err)
	}
	return abs, nil
}

// ValidatePathSecurity rejects empty paths and path traversal attempts.
// This is static analysis only; it does not touch the filesystem.
func ValidatePathSecurity(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	return nil
}

// EnsureDirectoryExists creates the directory (and parents) if missing.
func EnsureDirectoryExists(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}
