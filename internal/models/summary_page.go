package models

import "html/template"

// RunRow is one measured run as shown in the HTML summary.
type RunRow struct {
	Repetition int
	Values     []string
}

// PatternRuns holds the runs of one blocked pattern in CSV order.
type PatternRuns struct {
	Pattern string
	Runs    []RunRow
}

// Label names the pattern for display.
func (p PatternRuns) Label() string {
	if p.Pattern == "" {
		return "baseline"
	}
	return p.Pattern
}

// SummaryPageData feeds the HTML summary template.
type SummaryPageData struct {
	ReportTitle string
	GeneratedAt string
	URL         string
	TotalRuns   int
	MetricNames []string
	Patterns    []PatternRuns
	CustomCSS   template.CSS
}

// SetCustomCSS sets the inlined stylesheet.
func (d *SummaryPageData) SetCustomCSS(css template.CSS) {
	d.CustomCSS = css
}
