package reporter

import (
	"encoding/csv"

	"github.com/aleister1102/isolatedaudit/internal/common/filemanager"
	"github.com/aleister1102/isolatedaudit/internal/models"
	"github.com/rs/zerolog"
)

// CSVWriter appends audit results to a CSV file
type CSVWriter struct {
	fileManager *filemanager.FileManager
	logger      zerolog.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(logger zerolog.Logger) *CSVWriter {
	moduleLogger := logger.With().Str("component", "CSVWriter").Logger()
	return &CSVWriter{
		fileManager: filemanager.NewFileManager(moduleLogger),
		logger:      moduleLogger,
	}
}

// Prepare creates filename, and its parent directories, without writing to
// it, so an unwritable output path is reported before any audit runs. An
// existing file is left untouched.
func (w *CSVWriter) Prepare(filename string) error {
	file, _, err := w.fileManager.OpenAppend(filename, filemanager.DefaultFileAppendOptions())
	if err != nil {
		return &FileWriteError{Path: filename, Err: err}
	}
	if err := file.Close(); err != nil {
		return &FileWriteError{Path: filename, Err: err}
	}
	return nil
}

// WriteResults appends rows to filename in order. The header is written
// only when the file is new or empty, so reruns against the same file
// never repeat it. Parent directories are created as needed.
func (w *CSVWriter) WriteResults(filename string, rows []models.AuditResult) (err error) {
	file, isEmpty, err := w.fileManager.OpenAppend(filename, filemanager.DefaultFileAppendOptions())
	if err != nil {
		return &FileWriteError{Path: filename, Err: err}
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = &FileWriteError{Path: filename, Err: closeErr}
		}
	}()

	cw := csv.NewWriter(file)

	if isEmpty {
		if err := cw.Write(models.CSVHeader); err != nil {
			return &FileWriteError{Path: filename, Err: err}
		}
	}

	for _, row := range rows {
		if err := cw.Write(row.CSVRecord()); err != nil {
			return &FileWriteError{Path: filename, Err: err}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return &FileWriteError{Path: filename, Err: err}
	}

	w.logger.Info().Str("path", filename).Int("rows", len(rows)).Bool("header_written", isEmpty).Msg("Results written to CSV")
	return nil
}
