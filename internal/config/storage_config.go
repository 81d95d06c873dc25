package config

// StorageConfig enables optional sinks next to the CSV file
type StorageConfig struct {
	HistoryDBPath      string `json:"history_db_path,omitempty" yaml:"history_db_path,omitempty"`
	ParquetPath        string `json:"parquet_path,omitempty" yaml:"parquet_path,omitempty"`
	ParquetCompression string `json:"parquet_compression,omitempty" yaml:"parquet_compression,omitempty" validate:"omitempty,oneof=zstd gzip snappy none"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		ParquetCompression: DefaultStorageParquetCompression,
	}
}
