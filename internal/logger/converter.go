package logger

// ConvertConfig converts the file-level log section to LoggerConfig.
// An unparsable level falls back to info; config validation rejects it earlier.
func ConvertConfig(cfg FileLogConfig) LoggerConfig {
	level, _ := ParseLevel(cfg.LogLevel)

	return LoggerConfig{
		Level:         level,
		Format:        ParseFormat(cfg.LogFormat),
		EnableConsole: true,
		EnableFile:    cfg.LogFile != "",
		FilePath:      cfg.LogFile,
		MaxSizeMB:     positiveOr(cfg.MaxLogSizeMB, DefaultMaxLogSizeMB),
		MaxBackups:    positiveOr(cfg.MaxLogBackups, DefaultMaxLogBackups),
	}
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
