package adapters

import (
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	plog "github.com/phuslu/log"

	"review-harvester/internal/logging/types"
)

// StdoutAdapter renders entries to stdout through phuslu/log
type StdoutAdapter struct {
	name   string
	format string
	logger plog.Logger
	mu     sync.Mutex
}

// StdoutConfig represents configuration for the stdout adapter
type StdoutConfig struct {
	Format    string    `yaml:"format"`    // json or text
	Colorized bool      `yaml:"colorized"` // only applies to text
	Output    io.Writer `yaml:"-"`         // defaults to os.Stdout
}

// NewStdoutAdapter creates a new stdout adapter
func NewStdoutAdapter(name string, config StdoutConfig) *StdoutAdapter {
	out := config.Output
	if out == nil {
		out = os.Stdout
	}

	format := strings.ToLower(config.Format)
	var writer plog.Writer
	if format == "text" {
		writer = &plog.ConsoleWriter{
			ColorOutput:    config.Colorized,
			QuoteString:    true,
			EndWithMessage: true,
			Writer:         out,
		}
	} else {
		format = "json"
		writer = &plog.IOWriter{Writer: out}
	}

	return &StdoutAdapter{
		name:   name,
		format: format,
		logger: newPhusluLogger(writer),
	}
}

// Write writes a log entry to stdout
func (a *StdoutAdapter) Write(entry *types.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	emit(&a.logger, entry)
	return nil
}

// Close is a no-op for stdout
func (a *StdoutAdapter) Close() error {
	return nil
}

// Health always succeeds for stdout
func (a *StdoutAdapter) Health() error {
	return nil
}

// Name returns the name of the adapter
func (a *StdoutAdapter) Name() string {
	return a.name
}

// Format returns the resolved output format
func (a *StdoutAdapter) Format() string {
	return a.format
}

func newPhusluLogger(writer plog.Writer) plog.Logger {
	return plog.Logger{
		Level:      plog.TraceLevel,
		TimeField:  "time",
		TimeFormat: time.RFC3339,
		Writer:     writer,
	}
}

// emit maps an entry onto a phuslu entry. Fatal is written as an error with a
// marker field: the multi logger owns process exit.
func emit(logger *plog.Logger, entry *types.LogEntry) {
	var e *plog.Entry
	switch entry.Level {
	case types.DebugLevel:
		e = logger.Debug()
	case types.InfoLevel:
		e = logger.Info()
	case types.WarnLevel:
		e = logger.Warn()
	default:
		e = logger.Error()
	}
	if entry.Level == types.FatalLevel {
		e = e.Bool("fatal", true)
	}

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e = e.Any(k, entry.Fields[k])
	}

	e.Msg(entry.Message)
}
