package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDir is the configuration directory name
const ConfigDir = "flac2alac"

// getConfigDir returns the platform-appropriate config directory.
//   - Windows: %APPDATA%\flac2alac
//   - Unix: ~/.config/flac2alac
func getConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, ConfigDir)
		}
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			return filepath.Join(userProfile, "AppData", "Roaming", ConfigDir)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", ConfigDir)
	}
	return ""
}

// DefaultConfigPath returns the default path for the config file, or "" when
// no home directory can be determined.
func DefaultConfigPath() string {
	dir := getConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config")
}

// LogDirectory returns the default directory for log files.
func LogDirectory() string {
	dir := getConfigDir()
	if dir == "" {
		return filepath.Join(os.TempDir(), "flac2alac-logs")
	}
	return filepath.Join(dir, "logs")
}
