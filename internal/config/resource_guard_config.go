package config

// ResourceGuardConfig waits for a quiet host before each run
type ResourceGuardConfig struct {
	Enabled             bool    `json:"enabled" yaml:"enabled"`
	CPUThresholdPercent float64 `json:"cpu_threshold_percent,omitempty" yaml:"cpu_threshold_percent,omitempty" validate:"gte=0,lte=100"`
	MemThresholdPercent float64 `json:"mem_threshold_percent,omitempty" yaml:"mem_threshold_percent,omitempty" validate:"gte=0,lte=100"`
	MaxWaitSecs         int     `json:"max_wait_secs,omitempty" yaml:"max_wait_secs,omitempty" validate:"gte=0"`
	SampleIntervalMs    int     `json:"sample_interval_ms,omitempty" yaml:"sample_interval_ms,omitempty" validate:"gte=0"`
}

// NewDefaultResourceGuardConfig creates default resource guard configuration
func NewDefaultResourceGuardConfig() ResourceGuardConfig {
	return ResourceGuardConfig{
		Enabled:             false,
		CPUThresholdPercent: DefaultGuardCPUThresholdPercent,
		MemThresholdPercent: DefaultGuardMemThresholdPercent,
		MaxWaitSecs:         DefaultGuardMaxWaitSecs,
		SampleIntervalMs:    DefaultGuardSampleIntervalMs,
	}
}
