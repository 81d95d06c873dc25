package config

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/aleister1102/isolatedaudit/internal/common/errorwrapper"
	"github.com/aleister1102/isolatedaudit/internal/common/filemanager"
	"github.com/aleister1102/isolatedaudit/internal/logger"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	RunConfig           RunConfig            `json:"run,omitempty" yaml:"run,omitempty"`
	BrowserConfig       BrowserConfig        `json:"browser,omitempty" yaml:"browser,omitempty"`
	AuditConfig         AuditConfig          `json:"audit,omitempty" yaml:"audit,omitempty"`
	PatternsConfig      PatternsConfig       `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	StorageConfig       StorageConfig        `json:"storage,omitempty" yaml:"storage,omitempty"`
	ReporterConfig      ReporterConfig       `json:"report,omitempty" yaml:"report,omitempty"`
	ResourceGuardConfig ResourceGuardConfig  `json:"resource_guard,omitempty" yaml:"resource_guard,omitempty"`
	LogConfig           logger.FileLogConfig `json:"log_config,omitempty" yaml:"log_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		RunConfig:           NewDefaultRunConfig(),
		BrowserConfig:       NewDefaultBrowserConfig(),
		AuditConfig:         NewDefaultAuditConfig(),
		PatternsConfig:      NewDefaultPatternsConfig(),
		StorageConfig:       NewDefaultStorageConfig(),
		ReporterConfig:      NewDefaultReporterConfig(),
		ResourceGuardConfig: NewDefaultResourceGuardConfig(),
		LogConfig:           logger.NewDefaultFileLogConfig(),
	}
}

// LoadGlobalConfig builds the configuration from defaults, the config file
// (when one is found) and ISOLATEDAUDIT_* environment overrides, in that order.
// YAML is used for .yaml/.yml files, JSON otherwise.
func LoadGlobalConfig(providedPath string, log zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath, err := GetConfigPath(providedPath)
	if err != nil {
		return nil, err
	}

	if filePath != "" {
		fileManager := filemanager.NewFileManager(log)
		data, err := fileManager.ReadFile(filePath, filemanager.DefaultFileReadOptions())
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to load config file content")
		}

		if err := parseConfigContent(data, filePath, cfg); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to parse config content")
		}
		log.Debug().Str("path", filePath).Msg("Configuration file loaded")
	}

	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to apply environment overrides")
	}

	return cfg, nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	ext = strings.ToLower(ext)
	return ext == ".yaml" || ext == ".yml"
}

// parseYAMLConfig parses YAML configuration
func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

// parseJSONConfig parses JSON configuration
func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
