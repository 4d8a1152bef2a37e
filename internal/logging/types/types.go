// Package types holds the logging contracts shared by the logger and its adapters.
package types

import (
	"context"
	"time"
)

type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = [...]string{"debug", "info", "warn", "error", "fatal"}

func (l LogLevel) String() string {
	if l < DebugLevel || l > FatalLevel {
		return "info"
	}
	return levelNames[l]
}

// LogEntry is one structured record handed to every adapter
type LogEntry struct {
	Level     LogLevel               `json:"level"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Context   context.Context        `json:"-"`
}

// LogAdapter writes entries to one destination. Health reports whether the
// destination still accepts writes; readiness probes surface it.
type LogAdapter interface {
	Write(entry *LogEntry) error
	Close() error
	Health() error
	Name() string
}

// Rotator is implemented by adapters backed by a rotatable file
type Rotator interface {
	Rotate() error
}

// FieldLogger is the write side of a logger, the only part most components need
type FieldLogger interface {
	Debug(message string, fields ...map[string]interface{})
	Info(message string, fields ...map[string]interface{})
	Warn(message string, fields ...map[string]interface{})
	Error(message string, fields ...map[string]interface{})
	Fatal(message string, fields ...map[string]interface{})
}

// Logger is a FieldLogger that can derive scoped loggers and manage adapters
type Logger interface {
	FieldLogger

	WithContext(ctx context.Context) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger

	Log(level LogLevel, message string, fields ...map[string]interface{})

	SetLevel(level LogLevel)
	GetLevel() LogLevel

	AddAdapter(adapter LogAdapter) error
	RemoveAdapter(adapterName string) error

	// Health returns the error of every failing adapter, keyed by adapter name
	Health() map[string]error
	// Rotate rotates every adapter implementing Rotator
	Rotate() error

	Close() error
}

// AdapterConfig configures one adapter from the logging.adapters block
type AdapterConfig struct {
	Name    string                 `yaml:"name"`
	Type    string                 `yaml:"type"`
	Enabled bool                   `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options"`
}
