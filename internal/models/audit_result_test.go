package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditResult_CSVRecordMatchesHeader(t *testing.T) {
	r := AuditResult{
		URL:                    "https://example.com",
		Pattern:                "*ads*",
		FirstContentfulPaint:   "1.2 s",
		LargestContentfulPaint: "2.5 s",
		SpeedIndex:             "1.9 s",
		MaxPotentialFID:        "130 ms",
		CumulativeLayoutShift:  "0.021",
		TotalBlockingTime:      "1,200 ms",
		TimeToInteractive:      "4.1 s",
	}

	record := r.CSVRecord()
	assert.Len(t, record, len(CSVHeader))
	assert.Len(t, CSVHeader, 9)
	assert.Equal(t, "https://example.com", record[0])
	assert.Equal(t, "*ads*", record[1])
	assert.Equal(t, "1,200 ms", record[7])
	assert.Equal(t, "4.1 s", record[8])
}

func TestRunCell_IsBaseline(t *testing.T) {
	assert.True(t, RunCell{Pattern: ""}.IsBaseline())
	assert.False(t, RunCell{Pattern: "*ads*"}.IsBaseline())
}
