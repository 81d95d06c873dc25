package config

// ScreenConfig describes the emulated viewport
type ScreenConfig struct {
	Width             int     `json:"width,omitempty" yaml:"width,omitempty" validate:"gte=0"`
	Height            int     `json:"height,omitempty" yaml:"height,omitempty" validate:"gte=0"`
	DeviceScaleFactor float64 `json:"device_scale_factor,omitempty" yaml:"device_scale_factor,omitempty" validate:"gte=0"`
	Mobile            bool    `json:"mobile" yaml:"mobile"`
	Disabled          bool    `json:"disabled" yaml:"disabled"`
}

// ThrottlingConfig describes network and CPU throttling
type ThrottlingConfig struct {
	RTTMs        float64 `json:"rtt_ms,omitempty" yaml:"rtt_ms,omitempty" validate:"gte=0"`
	DownloadKbps float64 `json:"download_kbps,omitempty" yaml:"download_kbps,omitempty" validate:"gte=0"`
	UploadKbps   float64 `json:"upload_kbps,omitempty" yaml:"upload_kbps,omitempty" validate:"gte=0"`
	CPUSlowdown  float64 `json:"cpu_slowdown,omitempty" yaml:"cpu_slowdown,omitempty" validate:"gte=0"`
	Disabled     bool    `json:"disabled" yaml:"disabled"`
}

// AuditConfig controls how each page load is audited
type AuditConfig struct {
	Backend          string           `json:"backend,omitempty" yaml:"backend,omitempty" validate:"required,backend"`
	LighthousePath   string           `json:"lighthouse_path,omitempty" yaml:"lighthouse_path,omitempty"`
	OnlyCategories   []string         `json:"only_categories,omitempty" yaml:"only_categories,omitempty" validate:"dive,required"`
	MaxWaitForFCPMs  int              `json:"max_wait_for_fcp_ms,omitempty" yaml:"max_wait_for_fcp_ms,omitempty" validate:"min=1"`
	MaxWaitForLoadMs int              `json:"max_wait_for_load_ms,omitempty" yaml:"max_wait_for_load_ms,omitempty" validate:"min=1"`
	SettleMs         int              `json:"settle_ms,omitempty" yaml:"settle_ms,omitempty" validate:"gte=0"`
	FormFactor       string           `json:"form_factor,omitempty" yaml:"form_factor,omitempty" validate:"required,formfactor"`
	Screen           ScreenConfig     `json:"screen" yaml:"screen"`
	Throttling       ThrottlingConfig `json:"throttling" yaml:"throttling"`
}

// NewDefaultAuditConfig creates default audit configuration
func NewDefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Backend:          DefaultAuditBackend,
		LighthousePath:   DefaultAuditLighthousePath,
		OnlyCategories:   []string{"performance"},
		MaxWaitForFCPMs:  DefaultAuditMaxWaitForFCPMs,
		MaxWaitForLoadMs: DefaultAuditMaxWaitForLoadMs,
		SettleMs:         DefaultAuditSettleMs,
		FormFactor:       DefaultAuditFormFactor,
		Screen: ScreenConfig{
			Width:             DefaultScreenWidth,
			Height:            DefaultScreenHeight,
			DeviceScaleFactor: DefaultScreenDeviceScaleFactor,
			Mobile:            true,
		},
		Throttling: ThrottlingConfig{
			RTTMs:        DefaultThrottlingRTTMs,
			DownloadKbps: DefaultThrottlingDownloadKbps,
			UploadKbps:   DefaultThrottlingUploadKbps,
			CPUSlowdown:  DefaultThrottlingCPUSlowdown,
		},
	}
}
