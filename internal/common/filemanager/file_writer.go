package filemanager

import (
	"os"

	"github.com/aleister1102/isolatedaudit/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// FileWriter handles file writing operations
type FileWriter struct {
	logger zerolog.Logger
}

// NewFileWriter creates a new FileWriter instance
func NewFileWriter(logger zerolog.Logger) *FileWriter {
	return &FileWriter{
		logger: logger.With().Str("component", "FileWriter").Logger(),
	}
}

// OpenAppend opens path with O_APPEND|O_CREATE and reports whether it was empty.
func (fw *FileWriter) OpenAppend(path string, perm os.FileMode) (*os.File, bool, error) {
	if perm == 0 {
		perm = 0644
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, perm)
	if err != nil {
		return nil, false, errorwrapper.WrapError(err, "failed to open file for append: "+path)
	}

	stat, err := file.Stat()
	if err != nil {
		if closeErr := file.Close(); closeErr != nil {
			fw.logger.Error().Err(closeErr).Str("path", path).Msg("Failed to close file after stat error")
		}
		return nil, false, errorwrapper.WrapError(err, "failed to stat file: "+path)
	}

	fw.logger.Debug().Str("path", path).Int64("size", stat.Size()).Msg("File opened for append")
	return file, stat.Size() == 0, nil
}
