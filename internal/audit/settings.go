package audit

import (
	"time"

	"github.com/aleister1102/isolatedaudit/internal/config"
)

// Settings controls what the auditor collects and how long it waits.
type Settings struct {
	OnlyCategories []string
	MaxWaitForFCP  time.Duration
	MaxWaitForLoad time.Duration
	Settle         time.Duration
}

// ScreenEmulation is the emulated viewport.
type ScreenEmulation struct {
	Width             int
	Height            int
	DeviceScaleFactor float64
	Mobile            bool
	Disabled          bool
}

// Throttling is the simulated network and CPU profile.
type Throttling struct {
	RTTMs        float64
	DownloadKbps float64
	UploadKbps   float64
	CPUSlowdown  float64
	Disabled     bool
}

// Options controls how the page is loaded for one audit.
type Options struct {
	FormFactor         string
	Screen             ScreenEmulation
	Throttling         Throttling
	BlockedURLPatterns []string
	Output             string
}

// DefaultSettings returns the performance-only settings.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.NewDefaultAuditConfig())
}

// DefaultOptions returns mobile emulation with slow-4G throttling and nothing blocked.
func DefaultOptions() Options {
	return OptionsFromConfig(config.NewDefaultAuditConfig())
}

// SettingsFromConfig builds settings from the audit config section.
func SettingsFromConfig(cfg config.AuditConfig) Settings {
	categories := make([]string, len(cfg.OnlyCategories))
	copy(categories, cfg.OnlyCategories)

	return Settings{
		OnlyCategories: categories,
		MaxWaitForFCP:  time.Duration(cfg.MaxWaitForFCPMs) * time.Millisecond,
		MaxWaitForLoad: time.Duration(cfg.MaxWaitForLoadMs) * time.Millisecond,
		Settle:         time.Duration(cfg.SettleMs) * time.Millisecond,
	}
}

// OptionsFromConfig builds options from the audit config section.
func OptionsFromConfig(cfg config.AuditConfig) Options {
	return Options{
		FormFactor: cfg.FormFactor,
		Screen: ScreenEmulation{
			Width:             cfg.Screen.Width,
			Height:            cfg.Screen.Height,
			DeviceScaleFactor: cfg.Screen.DeviceScaleFactor,
			Mobile:            cfg.Screen.Mobile,
			Disabled:          cfg.Screen.Disabled,
		},
		Throttling: Throttling{
			RTTMs:        cfg.Throttling.RTTMs,
			DownloadKbps: cfg.Throttling.DownloadKbps,
			UploadKbps:   cfg.Throttling.UploadKbps,
			CPUSlowdown:  cfg.Throttling.CPUSlowdown,
			Disabled:     cfg.Throttling.Disabled,
		},
		Output: "json",
	}
}

// WithBlockedPatterns returns a copy of o that blocks patterns.
// o itself is left untouched.
func (o Options) WithBlockedPatterns(patterns []string) Options {
	out := o
	if len(patterns) == 0 {
		out.BlockedURLPatterns = nil
		return out
	}
	out.BlockedURLPatterns = make([]string, len(patterns))
	copy(out.BlockedURLPatterns, patterns)
	return out
}
