package reporter

import (
	"github.com/aleister1102/isolatedaudit/internal/models"
)

type metricColumn struct {
	name  string
	value func(models.AuditResult) string
}

var metricColumns = []metricColumn{
	{"First Contentful Paint", func(r models.AuditResult) string { return r.FirstContentfulPaint }},
	{"Largest Contentful Paint", func(r models.AuditResult) string { return r.LargestContentfulPaint }},
	{"Speed Index", func(r models.AuditResult) string { return r.SpeedIndex }},
	{"Max Potential FID", func(r models.AuditResult) string { return r.MaxPotentialFID }},
	{"Cumulative Layout Shift", func(r models.AuditResult) string { return r.CumulativeLayoutShift }},
	{"Total Blocking Time", func(r models.AuditResult) string { return r.TotalBlockingTime }},
	{"Time to Interactive", func(r models.AuditResult) string { return r.TimeToInteractive }},
}

// MetricNames lists the metric columns in CSV order.
func MetricNames() []string {
	names := make([]string, len(metricColumns))
	for i, c := range metricColumns {
		names[i] = c.name
	}
	return names
}

// GroupByPattern splits rows into consecutive runs of the same pattern.
// Rows keep their CSV order and display values verbatim; nothing is
// aggregated.
func GroupByPattern(rows []models.AuditResult) []models.PatternRuns {
	var groups []models.PatternRuns
	for _, row := range rows {
		if len(groups) == 0 || groups[len(groups)-1].Pattern != row.Pattern {
			groups = append(groups, models.PatternRuns{Pattern: row.Pattern})
		}
		values := make([]string, len(metricColumns))
		for i, col := range metricColumns {
			values[i] = col.value(row)
		}
		last := &groups[len(groups)-1]
		last.Runs = append(last.Runs, models.RunRow{Repetition: row.Repetition, Values: values})
	}
	return groups
}
