package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newObservedLogger returns a Logger whose output is captured in memory so
// tests can assert on emitted entries and fields.
func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_Defaults(t *testing.T) {
	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestLogger_EmitsFields(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	l.Info("timeline built",
		String("document_id", "doc-7"),
		Int("events", 12),
		Float64("confidence", 0.85),
		Bool("degraded", false),
		Duration("elapsed", 5*time.Millisecond),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "timeline built", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "doc-7", fields["document_id"])
	assert.Equal(t, int64(12), fields["events"])
	assert.Equal(t, 0.85, fields["confidence"])
	assert.Equal(t, false, fields["degraded"])
}

func TestLogger_ErrField(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	l.Warn("date unparseable", Err(errors.New("bad month")))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bad month", entries[0].ContextMap()["error"])

	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestLogger_WithAndNamed(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	child := l.With(String("component", "identity")).Named("engine")
	child.Debug("cluster formed", Int("size", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "engine", entries[0].LoggerName)
	assert.Equal(t, "identity", entries[0].ContextMap()["component"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, logs := newObservedLogger(zapcore.WarnLevel)

	l.Debug("suppressed")
	l.Info("suppressed too")
	l.Warn("kept")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestDefaultLogger_SetAndGet(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	l, _ := newObservedLogger(zapcore.InfoLevel)
	SetDefault(l)
	assert.Equal(t, l, Default())

	// nil is ignored
	SetDefault(nil)
	assert.Equal(t, l, Default())
}

func TestNopLogger_Discards(t *testing.T) {
	l := NewNopLogger()
	// must not panic
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("sub"))
}
