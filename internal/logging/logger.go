package logging

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"review-harvester/internal/logging/types"
)

// adapterSet is shared by a logger and every logger derived from it
type adapterSet struct {
	mu       sync.RWMutex
	adapters map[string]types.LogAdapter
}

// MultiLogger fans entries out to every registered adapter
type MultiLogger struct {
	set     *adapterSet
	level   LogLevel
	context context.Context
	fields  map[string]interface{}
	mu      sync.RWMutex
}

// NewMultiLogger creates a new MultiLogger instance
func NewMultiLogger() *MultiLogger {
	return &MultiLogger{
		set:     &adapterSet{adapters: make(map[string]types.LogAdapter)},
		level:   InfoLevel,
		context: context.Background(),
		fields:  make(map[string]interface{}),
	}
}

func (l *MultiLogger) Debug(message string, fields ...map[string]interface{}) {
	l.Log(DebugLevel, message, fields...)
}

func (l *MultiLogger) Info(message string, fields ...map[string]interface{}) {
	l.Log(InfoLevel, message, fields...)
}

func (l *MultiLogger) Warn(message string, fields ...map[string]interface{}) {
	l.Log(WarnLevel, message, fields...)
}

func (l *MultiLogger) Error(message string, fields ...map[string]interface{}) {
	l.Log(ErrorLevel, message, fields...)
}

// Fatal logs a fatal message, closes the adapters and exits
func (l *MultiLogger) Fatal(message string, fields ...map[string]interface{}) {
	l.Log(FatalLevel, message, fields...)
	_ = l.Close()
	os.Exit(1)
}

// Log writes a message at the given level to all adapters
func (l *MultiLogger) Log(level LogLevel, message string, fields ...map[string]interface{}) {
	if level < l.GetLevel() {
		return
	}

	entry := &types.LogEntry{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
		Context:   l.context,
		Fields:    l.mergeFields(fields...),
	}

	l.set.mu.RLock()
	defer l.set.mu.RUnlock()

	for name, adapter := range l.set.adapters {
		if err := adapter.Write(entry); err != nil {
			// stderr only, never back through the logger
			fmt.Fprintf(os.Stderr, "logging adapter %s error: %v\n", name, err)
		}
	}
}

func (l *MultiLogger) derive(ctx context.Context, fields map[string]interface{}) *MultiLogger {
	return &MultiLogger{
		set:     l.set,
		level:   l.GetLevel(),
		context: ctx,
		fields:  fields,
	}
}

func (l *MultiLogger) WithContext(ctx context.Context) Logger {
	return l.derive(ctx, l.copyFields())
}

func (l *MultiLogger) WithField(key string, value interface{}) Logger {
	fields := l.copyFields()
	fields[key] = value
	return l.derive(l.context, fields)
}

func (l *MultiLogger) WithFields(fields map[string]interface{}) Logger {
	merged := l.copyFields()
	for k, v := range fields {
		merged[k] = v
	}
	return l.derive(l.context, merged)
}

func (l *MultiLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *MultiLogger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// AddAdapter registers an adapter; names must be unique
func (l *MultiLogger) AddAdapter(adapter types.LogAdapter) error {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()

	name := adapter.Name()
	if _, exists := l.set.adapters[name]; exists {
		return fmt.Errorf("adapter %s already exists", name)
	}

	l.set.adapters[name] = adapter
	return nil
}

// RemoveAdapter closes and unregisters an adapter
func (l *MultiLogger) RemoveAdapter(adapterName string) error {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()

	adapter, exists := l.set.adapters[adapterName]
	if !exists {
		return fmt.Errorf("adapter %s not found", adapterName)
	}

	if err := adapter.Close(); err != nil {
		return fmt.Errorf("failed to close adapter %s: %w", adapterName, err)
	}

	delete(l.set.adapters, adapterName)
	return nil
}

// AdapterNames returns the registered adapter names in sorted order
func (l *MultiLogger) AdapterNames() []string {
	l.set.mu.RLock()
	defer l.set.mu.RUnlock()

	names := make([]string, 0, len(l.set.adapters))
	for name := range l.set.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Health reports every adapter that no longer accepts writes
func (l *MultiLogger) Health() map[string]error {
	l.set.mu.RLock()
	defer l.set.mu.RUnlock()

	failing := make(map[string]error)
	for name, adapter := range l.set.adapters {
		if err := adapter.Health(); err != nil {
			failing[name] = err
		}
	}
	return failing
}

// Rotate reopens the files of every rotatable adapter
func (l *MultiLogger) Rotate() error {
	l.set.mu.RLock()
	defer l.set.mu.RUnlock()

	var errs []string
	for name, adapter := range l.set.adapters {
		rotator, ok := adapter.(types.Rotator)
		if !ok {
			continue
		}
		if err := rotator.Rotate(); err != nil {
			errs = append(errs, fmt.Sprintf("adapter %s: %v", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to rotate adapters: %s", strings.Join(errs, ", "))
	}
	return nil
}

// Close closes all adapters
func (l *MultiLogger) Close() error {
	l.set.mu.Lock()
	defer l.set.mu.Unlock()

	var errs []string
	for name, adapter := range l.set.adapters {
		if err := adapter.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("adapter %s: %v", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to close adapters: %s", strings.Join(errs, ", "))
	}
	return nil
}

func (l *MultiLogger) copyFields() map[string]interface{} {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return fields
}

func (l *MultiLogger) mergeFields(additional ...map[string]interface{}) map[string]interface{} {
	fields := l.copyFields()
	for _, fieldMap := range additional {
		for k, v := range fieldMap {
			fields[k] = v
		}
	}
	return fields
}

// ParseLogLevel parses a string log level into LogLevel
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}
