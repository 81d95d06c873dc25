package config

import (
	"github.com/kelseyhightower/envconfig"
)

// EnvOverrides lists the settings that can be changed through ISOLATEDAUDIT_* variables.
// Unset variables leave the corresponding pointer nil. Keys carry the full
// prefix so envconfig never falls back to bare names such as URL.
type EnvOverrides struct {
	URL            *string `envconfig:"ISOLATEDAUDIT_URL"`
	NumberOfRuns   *int    `envconfig:"ISOLATEDAUDIT_RUNS"`
	Filename       *string `envconfig:"ISOLATEDAUDIT_FILENAME"`
	OutputDir      *string `envconfig:"ISOLATEDAUDIT_OUTPUT_DIR"`
	FailurePolicy  *string `envconfig:"ISOLATEDAUDIT_FAILURE_POLICY"`
	ChromePath     *string `envconfig:"ISOLATEDAUDIT_CHROME_PATH"`
	Headless       *bool   `envconfig:"ISOLATEDAUDIT_HEADLESS"`
	Backend        *string `envconfig:"ISOLATEDAUDIT_BACKEND"`
	LighthousePath *string `envconfig:"ISOLATEDAUDIT_LIGHTHOUSE_PATH"`
	HistoryDBPath  *string `envconfig:"ISOLATEDAUDIT_HISTORY_DB"`
	ParquetPath    *string `envconfig:"ISOLATEDAUDIT_PARQUET_PATH"`
	HTMLSummary    *string `envconfig:"ISOLATEDAUDIT_HTML_SUMMARY"`
	LogLevel       *string `envconfig:"ISOLATEDAUDIT_LOG_LEVEL"`
	LogFile        *string `envconfig:"ISOLATEDAUDIT_LOG_FILE"`
}

// ApplyEnvOverrides reads ISOLATEDAUDIT_* variables into cfg.
func ApplyEnvOverrides(cfg *GlobalConfig) error {
	var env EnvOverrides
	if err := envconfig.Process("", &env); err != nil {
		return err
	}
	env.apply(cfg)
	return nil
}

func (e EnvOverrides) apply(cfg *GlobalConfig) {
	setString(&cfg.RunConfig.URL, e.URL)
	setString(&cfg.RunConfig.Filename, e.Filename)
	setString(&cfg.RunConfig.OutputDir, e.OutputDir)
	setString(&cfg.RunConfig.FailurePolicy, e.FailurePolicy)
	setString(&cfg.BrowserConfig.ChromePath, e.ChromePath)
	setString(&cfg.AuditConfig.Backend, e.Backend)
	setString(&cfg.AuditConfig.LighthousePath, e.LighthousePath)
	setString(&cfg.StorageConfig.HistoryDBPath, e.HistoryDBPath)
	setString(&cfg.StorageConfig.ParquetPath, e.ParquetPath)
	setString(&cfg.ReporterConfig.HTMLSummaryPath, e.HTMLSummary)
	setString(&cfg.LogConfig.LogLevel, e.LogLevel)
	setString(&cfg.LogConfig.LogFile, e.LogFile)

	if e.NumberOfRuns != nil {
		cfg.RunConfig.NumberOfRuns = *e.NumberOfRuns
	}
	if e.Headless != nil {
		cfg.BrowserConfig.Headless = *e.Headless
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
