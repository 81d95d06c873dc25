package models

import "time"

// CSVHeader lists the CSV columns in the order produced by AuditResult.CSVRecord.
var CSVHeader = []string{
	"url",
	"pattern",
	"first_contentful_paint",
	"largest_contentful_paint",
	"speed_index",
	"max_potential_fid",
	"cumulative_layout_shift",
	"total_blocking_time",
	"time_to_interactive",
}

// AuditResult is one measured cell: the target URL, the blocked pattern
// (empty for the unblocked baseline) and the display-formatted metrics
// exactly as the auditor reported them.
type AuditResult struct {
	URL                    string    `json:"url"`
	Pattern                string    `json:"pattern"`
	Repetition             int       `json:"repetition"`
	FirstContentfulPaint   string    `json:"first_contentful_paint"`
	LargestContentfulPaint string    `json:"largest_contentful_paint"`
	SpeedIndex             string    `json:"speed_index"`
	MaxPotentialFID        string    `json:"max_potential_fid"`
	CumulativeLayoutShift  string    `json:"cumulative_layout_shift"`
	TotalBlockingTime      string    `json:"total_blocking_time"`
	TimeToInteractive      string    `json:"time_to_interactive"`
	AuditedAt              time.Time `json:"audited_at"`
}

// CSVRecord returns the row fields in CSVHeader order.
func (r AuditResult) CSVRecord() []string {
	return []string{
		r.URL,
		r.Pattern,
		r.FirstContentfulPaint,
		r.LargestContentfulPaint,
		r.SpeedIndex,
		r.MaxPotentialFID,
		r.CumulativeLayoutShift,
		r.TotalBlockingTime,
		r.TimeToInteractive,
	}
}
