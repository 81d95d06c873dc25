package reporter

const (
	// File permissions
	DirPermissions  = 0755
	FilePermissions = 0644

	// Embedded summary template
	DefaultSummaryTemplateName = "summary.html.tmpl"
	DefaultSummaryTitle        = "Isolated Audit Summary"

	// Embedded assets
	EmbeddedCSSPath = "assets/css/summary.css"
)
