package infra

import (
	"os"
	"path/filepath"
	"runtime"
)

const AppName = "coincow"

// DataDir returns the root directory for the cache database and watchlist.
// A local "_workspace" directory wins when present (portable/dev mode),
// otherwise the OS-standard data directory is used.
func DataDir() string {
	localDir := "_workspace"
	if _, err := os.Stat(localDir); err == nil {
		return localDir
	}

	var baseDir string
	switch runtime.GOOS {
	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			baseDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, _ := os.UserHomeDir()
		baseDir = filepath.Join(home, "Library", "Application Support")
	case "linux":
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			baseDir = dataHome
		} else {
			home, _ := os.UserHomeDir()
			baseDir = filepath.Join(home, ".local", "share")
		}
	default:
		return localDir
	}

	return filepath.Join(baseDir, AppName)
}

// EnsureDir creates the directory if it doesn't exist with safe permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// ResolveConfigPath finds the config.yaml, preferring the working directory
// over the OS config directory. Returns "" when neither exists, which makes
// LoadConfig fall back to defaults.
func ResolveConfigPath() string {
	localPath := filepath.Join("configs", "config.yaml")
	if _, err := os.Stat(localPath); err == nil {
		return localPath
	}

	configRoot, err := os.UserConfigDir()
	if err == nil {
		osPath := filepath.Join(configRoot, AppName, "config.yaml")
		if _, err := os.Stat(osPath); err == nil {
			return osPath
		}
	}

	return ""
}
