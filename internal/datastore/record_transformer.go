package datastore

import (
	"github.com/aleister1102/isolatedaudit/internal/audit"
	"github.com/aleister1102/isolatedaudit/internal/models"
	"github.com/rs/zerolog"
)

// RecordTransformer handles transformation of records
type RecordTransformer struct {
	logger zerolog.Logger
}

// NewRecordTransformer creates a new RecordTransformer
func NewRecordTransformer(logger zerolog.Logger) *RecordTransformer {
	return &RecordTransformer{
		logger: logger.With().Str("component", "RecordTransformer").Logger(),
	}
}

// TransformToParquetResult converts an audit result to its Parquet row
func (rt *RecordTransformer) TransformToParquetResult(r models.AuditResult, batchID string) ParquetAuditResult {
	return ParquetAuditResult{
		BatchID:    StringPtrOrNil(batchID),
		URL:        r.URL,
		Pattern:    r.Pattern,
		Repetition: int32(r.Repetition),

		FirstContentfulPaint:   r.FirstContentfulPaint,
		LargestContentfulPaint: r.LargestContentfulPaint,
		SpeedIndex:             r.SpeedIndex,
		MaxPotentialFID:        r.MaxPotentialFID,
		CumulativeLayoutShift:  r.CumulativeLayoutShift,
		TotalBlockingTime:      r.TotalBlockingTime,
		TimeToInteractive:      r.TimeToInteractive,

		FirstContentfulPaintMs:   rt.numeric(r.FirstContentfulPaint),
		LargestContentfulPaintMs: rt.numeric(r.LargestContentfulPaint),
		SpeedIndexMs:             rt.numeric(r.SpeedIndex),
		MaxPotentialFIDMs:        rt.numeric(r.MaxPotentialFID),
		CumulativeLayoutShiftVal: rt.numeric(r.CumulativeLayoutShift),
		TotalBlockingTimeMs:      rt.numeric(r.TotalBlockingTime),
		TimeToInteractiveMs:      rt.numeric(r.TimeToInteractive),

		AuditedAt: r.AuditedAt.UnixMilli(),
	}
}

func (rt *RecordTransformer) numeric(display string) *float64 {
	v, _, ok := audit.ParseDisplayValue(display)
	if !ok {
		rt.logger.Debug().Str("value", display).Msg("Display value is not numeric")
		return nil
	}
	return &v
}

// StringPtrOrNil converts string to pointer, or nil if string is empty
func StringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
