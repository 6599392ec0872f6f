// Package filex contains filesystem helpers for the client: resolving the data
// directory and opening files picked for upload.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// userConfigDir is a seam for tests.
var userConfigDir = os.UserConfigDir

// DefaultDataDir returns <user config dir>/<appName>, or ./.<appName> when the
// platform has no config directory.
func DefaultDataDir(appName string) string {
	base, err := userConfigDir()
	if err != nil || base == "" {
		return "." + appName
	}
	return filepath.Join(base, appName)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// EnsureDir creates dir (and parents) if missing and returns it.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// OpenRegular opens path for reading and returns its size. Directories and
// other non-regular files are rejected.
func OpenRegular(path string) (*os.File, int64, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	if !fi.Mode().IsRegular() {
		_ = f.Close()
		return nil, 0, errors.New(path + " is not a regular file")
	}
	return f, fi.Size(), nil
}
