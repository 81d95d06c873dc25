package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/aleister1102/isolatedaudit/internal/common/errorwrapper"
)

var defaultConfigFiles = []string{"config.yaml", "config.yml", "config.json"}

// GetConfigPath determines the configuration file path.
// Priority:
// 1. the --config flag (must exist)
// 2. ISOLATEDAUDIT_CONFIG_PATH environment variable (must exist)
// 3. config.yaml, config.yml or config.json in the current working directory
// 4. the same names in $XDG_CONFIG_HOME/isolatedaudit
// An empty path with a nil error means no config file; defaults apply.
func GetConfigPath(configFilePathFlag string) (string, error) {
	if configFilePathFlag != "" {
		if !fileExists(configFilePathFlag) {
			return "", errorwrapper.NewValidationError("config_file", configFilePathFlag, "config file does not exist")
		}
		return configFilePathFlag, nil
	}

	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		if !fileExists(envPath) {
			return "", errorwrapper.NewValidationError(EnvConfigPath, envPath, "config file does not exist")
		}
		return envPath, nil
	}

	var locations []string
	if cwd, err := os.Getwd(); err == nil {
		locations = append(locations, cwd)
	}
	locations = append(locations, XDGConfigDir())

	for _, loc := range locations {
		for _, file := range defaultConfigFiles {
			path := filepath.Join(loc, file)
			if fileExists(path) {
				return path, nil
			}
		}
	}
	return "", nil
}

// XDGConfigDir returns the per-user config directory, e.g. ~/.config/isolatedaudit on Linux.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Helper function to check if a file exists
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
