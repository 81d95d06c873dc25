package filemanager

import (
	"io/fs"
	"time"
)

// FileInfo contains metadata about a file
type FileInfo struct {
	Path        string      // Full file path
	Name        string      // File name only
	Size        int64       // File size in bytes
	IsDir       bool        // Whether it's a directory
	ModTime     time.Time   // Last modification time
	Permissions fs.FileMode // File permissions
}

// FileReadOptions configures file reading behavior
type FileReadOptions struct {
	MaxSize int64 // Maximum file size to read (0 = no limit)
}

// FileAppendOptions configures append behavior
type FileAppendOptions struct {
	CreateDirs  bool        // Whether to create parent directories
	Permissions fs.FileMode // File permissions for newly created files
}

// DefaultFileReadOptions returns default file reading options
func DefaultFileReadOptions() FileReadOptions {
	return FileReadOptions{
		MaxSize: 10 * 1024 * 1024,
	}
}

// DefaultFileAppendOptions returns default append options
func DefaultFileAppendOptions() FileAppendOptions {
	return FileAppendOptions{
		CreateDirs:  true,
		Permissions: 0644,
	}
}
