package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-harvester/internal/config"
	"review-harvester/internal/logging/adapters"
	"review-harvester/internal/logging/types"
)

type recordingAdapter struct {
	name    string
	mu      sync.Mutex
	entries []*types.LogEntry
	closed  bool
}

func (a *recordingAdapter) Write(entry *types.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingAdapter) Close() error  { a.closed = true; return nil }
func (a *recordingAdapter) Health() error { return nil }
func (a *recordingAdapter) Name() string  { return a.name }

type rotatingAdapter struct {
	recordingAdapter
	rotations int
}

func (a *rotatingAdapter) Rotate() error { a.rotations++; return nil }

func TestMultiLogger_HealthReportsClosedFileAdapter(t *testing.T) {
	file, err := adapters.NewFileAdapter("file", adapters.FileConfig{
		FilePath:   filepath.Join(t.TempDir(), "logs", "app.log"),
		CreateDirs: true,
	})
	require.NoError(t, err)

	logger := NewMultiLogger()
	require.NoError(t, logger.AddAdapter(file))
	require.NoError(t, logger.AddAdapter(&recordingAdapter{name: "memory"}))
	assert.Empty(t, logger.Health())

	require.NoError(t, file.Close())

	failing := logger.Health()
	require.Len(t, failing, 1)
	assert.Contains(t, failing, "file")
}

func TestMultiLogger_RotateOnlyTouchesRotators(t *testing.T) {
	rotating := &rotatingAdapter{recordingAdapter: recordingAdapter{name: "rotating"}}
	logger := NewMultiLogger()
	require.NoError(t, logger.AddAdapter(rotating))
	require.NoError(t, logger.AddAdapter(&recordingAdapter{name: "memory"}))

	require.NoError(t, logger.Rotate())
	require.NoError(t, logger.WithField("k", "v").Rotate())

	assert.Equal(t, 2, rotating.rotations)
}

func TestFileAdapter_RotateAfterWrite(t *testing.T) {
	file, err := adapters.NewFileAdapter("file", adapters.FileConfig{
		FilePath:   filepath.Join(t.TempDir(), "app.log"),
		MaxBackups: 2,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	require.NoError(t, file.Write(&types.LogEntry{Level: types.InfoLevel, Message: "before"}))
	require.NoError(t, file.Rotate())
	require.NoError(t, file.Write(&types.LogEntry{Level: types.InfoLevel, Message: "after"}))
	assert.NoError(t, file.Health())
}

func TestMultiLogger_LevelFiltering(t *testing.T) {
	logger := NewMultiLogger()
	rec := &recordingAdapter{name: "rec"}
	require.NoError(t, logger.AddAdapter(rec))

	logger.SetLevel(WarnLevel)
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept too")

	require.Len(t, rec.entries, 2)
	assert.Equal(t, "kept", rec.entries[0].Message)
	assert.Equal(t, ErrorLevel, rec.entries[1].Level)
}

func TestMultiLogger_DerivedLoggersShareAdapters(t *testing.T) {
	logger := NewMultiLogger()
	rec := &recordingAdapter{name: "rec"}
	require.NoError(t, logger.AddAdapter(rec))

	child := logger.WithField("component", "revealer").WithFields(map[string]interface{}{"request_id": "r-1"})
	child.Info("hello", map[string]interface{}{"iteration": 3})

	require.Len(t, rec.entries, 1)
	fields := rec.entries[0].Fields
	assert.Equal(t, "revealer", fields["component"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, 3, fields["iteration"])

	// the parent is unchanged
	logger.Info("plain")
	require.Len(t, rec.entries, 2)
	assert.NotContains(t, rec.entries[1].Fields, "component")
}

func TestMultiLogger_DuplicateAndRemoveAdapter(t *testing.T) {
	logger := NewMultiLogger()
	rec := &recordingAdapter{name: "rec"}
	require.NoError(t, logger.AddAdapter(rec))
	assert.Error(t, logger.AddAdapter(&recordingAdapter{name: "rec"}))

	require.NoError(t, logger.RemoveAdapter("rec"))
	assert.True(t, rec.closed)
	assert.Error(t, logger.RemoveAdapter("rec"))
	assert.Empty(t, logger.AdapterNames())
}

func TestStdoutAdapter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewMultiLogger()
	require.NoError(t, logger.AddAdapter(adapters.NewStdoutAdapter("json", adapters.StdoutConfig{
		Format: "json",
		Output: &buf,
	})))

	logger.Info("scrape finished", map[string]interface{}{"count": 12, "url": "https://www.aliexpress.com/item/1.html"})

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded))
	assert.Equal(t, "info", decoded["level"])
	assert.Equal(t, "scrape finished", decoded["message"])
	assert.Equal(t, float64(12), decoded["count"])
	assert.Contains(t, decoded, "time")
}

func TestStdoutAdapter_Text(t *testing.T) {
	var buf bytes.Buffer
	adapter := adapters.NewStdoutAdapter("text", adapters.StdoutConfig{Format: "TEXT", Output: &buf})
	assert.Equal(t, "text", adapter.Format())

	logger := NewMultiLogger()
	require.NoError(t, logger.AddAdapter(adapter))
	logger.Warn("no trigger found")

	assert.True(t, strings.Contains(buf.String(), "no trigger found"))
}

func TestManager_InitializeFallsBackToStdout(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "debug"

	manager := NewManager()
	require.NoError(t, manager.Initialize(cfg))

	ml := manager.GetLogger().(*MultiLogger)
	assert.Equal(t, DebugLevel, ml.GetLevel())
	assert.Equal(t, []string{"stdout"}, ml.AdapterNames())
}

func TestFactory_RejectsUnknownAndIncompleteAdapters(t *testing.T) {
	factory := NewAdapterFactory()

	_, err := factory.CreateAdapter(AdapterConfig{Name: "x", Type: "carrier-pigeon"})
	assert.Error(t, err)

	_, err = factory.CreateAdapter(AdapterConfig{Name: "f", Type: "file", Options: map[string]interface{}{}})
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLogLevel("warning"))
	assert.Equal(t, InfoLevel, ParseLogLevel("nonsense"))
}
