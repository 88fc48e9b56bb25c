package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome    = "LIZE_HOME"
	envXDGData = "XDG_DATA_HOME"
	appDir     = "lize"
	dotDir     = ".lize"
	dbFilename = "lize.db"
)

// DataDir resolves the local state directory and creates it (0700).
// Lookup order: $LIZE_HOME, $XDG_DATA_HOME/lize, ~/.lize.
func DataDir() (string, error) {
	dir, err := resolveDataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return dir, nil
}

func resolveDataDir() (string, error) {
	if dir := os.Getenv(envHome); dir != "" {
		return dir, nil
	}
	if xdg := os.Getenv(envXDGData); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user home: %w", err)
	}
	return filepath.Join(home, dotDir), nil
}

// DBPath is the SQLite file inside DataDir.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFilename), nil
}
