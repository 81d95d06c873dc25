package config

// BrowserConfig controls the browser process launched for every run
type BrowserConfig struct {
	ChromePath        string   `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty" validate:"omitempty,fileexists"`
	Headless          bool     `json:"headless" yaml:"headless"`
	UserDataDir       string   `json:"user_data_dir,omitempty" yaml:"user_data_dir,omitempty"`
	LaunchTimeoutSecs int      `json:"launch_timeout_secs,omitempty" yaml:"launch_timeout_secs,omitempty" validate:"min=1"`
	ExtraFlags        []string `json:"extra_flags,omitempty" yaml:"extra_flags,omitempty" validate:"dive,required"`
}

// NewDefaultBrowserConfig creates default browser configuration
func NewDefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:          DefaultBrowserHeadless,
		LaunchTimeoutSecs: DefaultBrowserLaunchTimeoutSecs,
	}
}
