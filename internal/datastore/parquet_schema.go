package datastore

// ParquetAuditResult is the Parquet schema of one audit row.
// Display strings are kept verbatim; the numeric columns hold the same
// values parsed back (timings in ms) and are null when unparseable.
type ParquetAuditResult struct {
	BatchID    *string `parquet:"batch_id,optional"`
	URL        string  `parquet:"url"`
	Pattern    string  `parquet:"pattern"`
	Repetition int32   `parquet:"repetition"`

	FirstContentfulPaint   string `parquet:"first_contentful_paint"`
	LargestContentfulPaint string `parquet:"largest_contentful_paint"`
	SpeedIndex             string `parquet:"speed_index"`
	MaxPotentialFID        string `parquet:"max_potential_fid"`
	CumulativeLayoutShift  string `parquet:"cumulative_layout_shift"`
	TotalBlockingTime      string `parquet:"total_blocking_time"`
	TimeToInteractive      string `parquet:"time_to_interactive"`

	FirstContentfulPaintMs   *float64 `parquet:"first_contentful_paint_ms,optional"`
	LargestContentfulPaintMs *float64 `parquet:"largest_contentful_paint_ms,optional"`
	SpeedIndexMs             *float64 `parquet:"speed_index_ms,optional"`
	MaxPotentialFIDMs        *float64 `parquet:"max_potential_fid_ms,optional"`
	CumulativeLayoutShiftVal *float64 `parquet:"cumulative_layout_shift_value,optional"`
	TotalBlockingTimeMs      *float64 `parquet:"total_blocking_time_ms,optional"`
	TimeToInteractiveMs      *float64 `parquet:"time_to_interactive_ms,optional"`

	AuditedAt int64 `parquet:"audited_at"` // Unix milliseconds
}
