package datastore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/aleister1102/isolatedaudit/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []models.AuditResult {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []models.AuditResult{
		{
			URL: "https://example.com", Pattern: "", Repetition: 1,
			FirstContentfulPaint: "1.2 s", LargestContentfulPaint: "2.5 s", SpeedIndex: "3.1 s",
			MaxPotentialFID: "120 ms", CumulativeLayoutShift: "0.053", TotalBlockingTime: "1,200 ms",
			TimeToInteractive: "6.4 s", AuditedAt: at,
		},
		{
			URL: "https://example.com", Pattern: "*ads*", Repetition: 1,
			FirstContentfulPaint: "1.0 s", LargestContentfulPaint: "2.0 s", SpeedIndex: "2.8 s",
			MaxPotentialFID: "90 ms", CumulativeLayoutShift: "0", TotalBlockingTime: "600 ms",
			TimeToInteractive: "5.1 s", AuditedAt: at.Add(time.Minute),
		},
	}
}

func TestHistoryStore_RecordAndList(t *testing.T) {
	ctx := context.Background()
	store, err := NewHistoryStore(filepath.Join(t.TempDir(), "db", "history.db"), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	started := time.Date(2024, 5, 1, 9, 59, 0, 0, time.UTC)
	id, err := store.RecordBatch(ctx, BatchRecord{
		URL:          "https://example.com",
		NumberOfRuns: 1,
		Patterns:     []string{"", "*ads*"},
		StartedAt:    started,
		FinishedAt:   started.Add(2 * time.Minute),
		Status:       BatchStatusCompleted,
		CSVPath:      "results/out.csv",
		Results:      sampleResults(),
	})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	entries, err := store.ListBatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, []string{"", "*ads*"}, entries[0].Patterns)
	assert.Equal(t, 2, entries[0].Rows)
	assert.Equal(t, started, entries[0].StartedAt)
	assert.Equal(t, "results/out.csv", entries[0].CSVPath)

	results, err := store.BatchResults(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, sampleResults(), results)
}

func TestHistoryStore_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store, err := NewHistoryStore(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, status := range []string{BatchStatusCompleted, BatchStatusAborted} {
		_, err := store.RecordBatch(ctx, BatchRecord{
			ID:        []string{"first", "second"}[i],
			URL:       "https://example.com",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Status:    status,
		})
		require.NoError(t, err)
	}

	entries, err := store.ListBatches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].ID)
	assert.Equal(t, BatchStatusAborted, entries[0].Status)
	assert.Equal(t, 0, entries[0].Rows)

	_, err = store.RecordBatch(ctx, BatchRecord{ID: "first", URL: "https://example.com", Status: BatchStatusCompleted})
	assert.Error(t, err, "duplicate batch id must fail")
}

func TestParquetExporter_Export(t *testing.T) {
	for _, codec := range []string{"zstd", "gzip", "snappy", "none"} {
		t.Run(codec, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "results.parquet")
			exporter, err := NewParquetExporter(config.StorageConfig{ParquetPath: path, ParquetCompression: codec}, zerolog.Nop())
			require.NoError(t, err)

			res, err := exporter.Export(context.Background(), "batch-1", sampleResults())
			require.NoError(t, err)
			assert.Equal(t, 2, res.RecordsWritten)
			assert.Greater(t, res.FileSize, int64(0))

			rows, err := parquet.ReadFile[ParquetAuditResult](path)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "*ads*", rows[1].Pattern)
			assert.Equal(t, "1,200 ms", rows[0].TotalBlockingTime)
			require.NotNil(t, rows[0].TotalBlockingTimeMs)
			assert.Equal(t, float64(1200), *rows[0].TotalBlockingTimeMs)
			require.NotNil(t, rows[0].BatchID)
			assert.Equal(t, "batch-1", *rows[0].BatchID)
		})
	}
}

func TestNewParquetExporter_RequiresPath(t *testing.T) {
	_, err := NewParquetExporter(config.StorageConfig{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestRecordTransformer_NonNumeric(t *testing.T) {
	rt := NewRecordTransformer(zerolog.Nop())
	r := sampleResults()[0]
	r.SpeedIndex = "n/a"

	row := rt.TransformToParquetResult(r, "")
	assert.Nil(t, row.BatchID)
	assert.Nil(t, row.SpeedIndexMs)
	require.NotNil(t, row.CumulativeLayoutShiftVal)
	assert.InDelta(t, 0.053, *row.CumulativeLayoutShiftVal, 1e-9)
}
