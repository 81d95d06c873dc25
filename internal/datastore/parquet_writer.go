package datastore

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/isolatedaudit/internal/common/errorwrapper"
	"github.com/aleister1102/isolatedaudit/internal/common/filemanager"
	"github.com/aleister1102/isolatedaudit/internal/config"
	"github.com/aleister1102/isolatedaudit/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// WriteResult contains the result of a write operation
type WriteResult struct {
	FilePath       string
	RecordsWritten int
	FileSize       int64
	WriteTime      time.Duration
}

// ParquetExporter writes a batch of audit results to a Parquet file.
type ParquetExporter struct {
	config      config.StorageConfig
	logger      zerolog.Logger
	fileManager *filemanager.FileManager
	transformer *RecordTransformer
}

// NewParquetExporter creates a new ParquetExporter
func NewParquetExporter(cfg config.StorageConfig, logger zerolog.Logger) (*ParquetExporter, error) {
	if cfg.ParquetPath == "" {
		return nil, errorwrapper.NewValidationError("parquet_path", cfg.ParquetPath, "ParquetPath is not configured")
	}

	moduleLogger := logger.With().Str("component", "ParquetExporter").Logger()
	return &ParquetExporter{
		config:      cfg,
		logger:      moduleLogger,
		fileManager: filemanager.NewFileManager(moduleLogger),
		transformer: NewRecordTransformer(moduleLogger),
	}, nil
}

// Export replaces the configured Parquet file with rows.
func (pe *ParquetExporter) Export(ctx context.Context, batchID string, rows []models.AuditResult) (*WriteResult, error) {
	startTime := time.Now()
	filePath := pe.config.ParquetPath

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := pe.fileManager.EnsureDirectory(filepath.Dir(filePath), 0755); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create Parquet directory")
	}

	records := make([]ParquetAuditResult, 0, len(rows))
	for _, r := range rows {
		records = append(records, pe.transformer.TransformToParquetResult(r, batchID))
	}

	written, err := pe.writeToParquetFile(filePath, records)
	if err != nil {
		return nil, err
	}

	var fileSize int64
	if info, statErr := os.Stat(filePath); statErr == nil {
		fileSize = info.Size()
	}

	result := &WriteResult{
		FilePath:       filePath,
		RecordsWritten: written,
		FileSize:       fileSize,
		WriteTime:      time.Since(startTime),
	}
	pe.logger.Info().
		Str("file_path", result.FilePath).
		Int("records_written", result.RecordsWritten).
		Dur("write_time", result.WriteTime).
		Msg("Successfully wrote audit results to Parquet file")
	return result, nil
}

// writeToParquetFile writes the transformed results to a Parquet file
func (pe *ParquetExporter) writeToParquetFile(filePath string, records []ParquetAuditResult) (n int, err error) {
	file, err := os.Create(filePath)
	if err != nil {
		return 0, errorwrapper.WrapError(err, "failed to create/truncate parquet file: "+filePath)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = errorwrapper.WrapError(closeErr, "failed to close parquet file")
		}
	}()

	writer := parquet.NewGenericWriter[ParquetAuditResult](file, pe.compressionOption())

	n, err = writer.Write(records)
	if err != nil {
		_ = writer.Close()
		return 0, errorwrapper.WrapError(err, "failed to write audit results to parquet file")
	}
	if err := writer.Close(); err != nil {
		return 0, errorwrapper.WrapError(err, "failed to finalize parquet file")
	}
	return n, nil
}

// compressionOption returns the compression option based on configuration
func (pe *ParquetExporter) compressionOption() parquet.WriterOption {
	switch pe.config.ParquetCompression {
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "none":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Zstd)
	}
}
