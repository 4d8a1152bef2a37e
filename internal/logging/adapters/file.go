package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	plog "github.com/phuslu/log"

	"review-harvester/internal/logging/types"
)

// FileAdapter writes JSON entries to a size-rotated file
type FileAdapter struct {
	name   string
	writer *plog.FileWriter
	logger plog.Logger
	mu     sync.Mutex
	closed bool
}

// FileConfig represents configuration for the file adapter
type FileConfig struct {
	FilePath   string      `yaml:"file_path"`
	MaxSize    int64       `yaml:"max_size"`    // bytes, 0 disables rotation
	MaxBackups int         `yaml:"max_backups"` // rotated files kept
	LocalTime  bool        `yaml:"local_time"`
	CreateDirs bool        `yaml:"create_dirs"`
	FileMode   os.FileMode `yaml:"file_mode"`
}

// NewFileAdapter creates a new file adapter
func NewFileAdapter(name string, config FileConfig) (*FileAdapter, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	if config.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	if config.FileMode == 0 {
		config.FileMode = 0o644
	}

	writer := &plog.FileWriter{
		Filename:     config.FilePath,
		FileMode:     config.FileMode,
		MaxSize:      config.MaxSize,
		MaxBackups:   config.MaxBackups,
		LocalTime:    config.LocalTime,
		EnsureFolder: config.CreateDirs,
	}

	return &FileAdapter{
		name:   name,
		writer: writer,
		logger: newPhusluLogger(writer),
	}, nil
}

// Write writes a log entry to the file
func (a *FileAdapter) Write(entry *types.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return fmt.Errorf("file adapter %s is closed", a.name)
	}

	emit(&a.logger, entry)
	return nil
}

// Rotate forces a rotation of the underlying file
func (a *FileAdapter) Rotate() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writer.Rotate()
}

// Close closes the file
func (a *FileAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true
	return a.writer.Close()
}

// Health reports whether the adapter still accepts writes
func (a *FileAdapter) Health() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return fmt.Errorf("file adapter %s is closed", a.name)
	}
	return nil
}

// Name returns the name of the adapter
func (a *FileAdapter) Name() string {
	return a.name
}
