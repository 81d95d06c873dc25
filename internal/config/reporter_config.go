package config

// ReporterConfig controls the optional HTML summary written next to the CSV
type ReporterConfig struct {
	HTMLSummaryPath string `json:"html_summary_path,omitempty" yaml:"html_summary_path,omitempty"`
	TemplatePath    string `json:"template_path,omitempty" yaml:"template_path,omitempty" validate:"omitempty,fileexists"`
	CSSPath         string `json:"css_path,omitempty" yaml:"css_path,omitempty" validate:"omitempty,fileexists"`
	ReportTitle     string `json:"report_title,omitempty" yaml:"report_title,omitempty"`
}

// NewDefaultReporterConfig creates default reporter configuration
func NewDefaultReporterConfig() ReporterConfig {
	return ReporterConfig{}
}
