package audit

import (
	"strings"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/models"
)

// Metric audit ids, in CSV column order.
const (
	MetricFirstContentfulPaint   = "first-contentful-paint"
	MetricLargestContentfulPaint = "largest-contentful-paint"
	MetricSpeedIndex             = "speed-index"
	MetricMaxPotentialFID        = "max-potential-fid"
	MetricCumulativeLayoutShift  = "cumulative-layout-shift"
	MetricTotalBlockingTime      = "total-blocking-time"
	MetricInteractive            = "interactive"
)

// MetricIDs lists every metric a result needs.
var MetricIDs = []string{
	MetricFirstContentfulPaint,
	MetricLargestContentfulPaint,
	MetricSpeedIndex,
	MetricMaxPotentialFID,
	MetricCumulativeLayoutShift,
	MetricTotalBlockingTime,
	MetricInteractive,
}

// Entry is one audit of a report.
type Entry struct {
	ID           string
	NumericValue float64
	NumericUnit  string
	DisplayValue string
}

// Report is the backend-neutral outcome of one audit.
type Report struct {
	RequestedURL string
	FinalURL     string
	FetchTime    time.Time
	Audits       map[string]Entry
}

// Display returns the display value of an audit or a MissingMetricError.
func (r *Report) Display(id string) (string, error) {
	if r == nil || r.Audits == nil {
		return "", &MissingMetricError{Metric: id}
	}
	entry, ok := r.Audits[id]
	if !ok || strings.TrimSpace(entry.DisplayValue) == "" {
		return "", &MissingMetricError{Metric: id}
	}
	return entry.DisplayValue, nil
}

// Result extracts the metric display values into a result row.
func (r *Report) Result(url, pattern string) (models.AuditResult, error) {
	values := make(map[string]string, len(MetricIDs))
	for _, id := range MetricIDs {
		v, err := r.Display(id)
		if err != nil {
			return models.AuditResult{}, err
		}
		values[id] = v
	}

	auditedAt := r.FetchTime
	if auditedAt.IsZero() {
		auditedAt = time.Now()
	}

	return models.AuditResult{
		URL:                    url,
		Pattern:                pattern,
		FirstContentfulPaint:   values[MetricFirstContentfulPaint],
		LargestContentfulPaint: values[MetricLargestContentfulPaint],
		SpeedIndex:             values[MetricSpeedIndex],
		MaxPotentialFID:        values[MetricMaxPotentialFID],
		CumulativeLayoutShift:  values[MetricCumulativeLayoutShift],
		TotalBlockingTime:      values[MetricTotalBlockingTime],
		TimeToInteractive:      values[MetricInteractive],
		AuditedAt:              auditedAt.UTC(),
	}, nil
}
