package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// SearchPaths returns the first path that exists, or an error naming
// every location tried.
func SearchPaths(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("file not found in any of the search paths: %v", paths)
}

// SearchPathsOptional returns the first path that exists, or an empty
// string when none does. Used for optional configuration files.
func SearchPathsOptional(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// DefaultConfigPaths returns the standard search order for a config
// file: the current directory, its config/ subdirectory, then the
// per-user config directory.
func DefaultConfigPaths(filename string) []string {
	paths := []string{
		filepath.Join(".", filename),
		filepath.Join(".", "config", filename),
	}
	if userDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(userDir, "milepost", filename))
	}
	return paths
}
