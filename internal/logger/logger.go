package logger

import (
	"github.com/rs/zerolog"
)

// NewWithBatchID creates a logger from the config file section. When a file
// sink is enabled and batchID is set, the file goes under batches/<batchID>/.
func NewWithBatchID(cfg FileLogConfig, batchID string) (zerolog.Logger, error) {
	return NewLoggerBuilder().
		WithConfig(cfg).
		WithBatchID(batchID).
		Build()
}
