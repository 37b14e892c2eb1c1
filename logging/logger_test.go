package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlogLoggerWritesStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLoggerWithOutput(&buf, LogLevelDebug, "text", false)

	logger.Debug("node completed", "node", "call_model", "run_id", "run-1")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "node completed")
	assert.Contains(t, out, "node=call_model")
	assert.Contains(t, out, "run_id=run-1")
}

func TestNewSlogLoggerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLoggerWithOutput(&buf, LogLevelWarn, "json", false)

	logger.Info("suppressed")
	assert.Empty(t, buf.String())

	logger.Error("kept", "error", "boom")
	assert.Contains(t, buf.String(), "kept")
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestLogrusAdapterMapsArgsToFields(t *testing.T) {
	base, hook := logrustest.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)

	var l Logger = NewLogrusAdapter(base)
	l.Info("tool call completed", "tool", "add", "run_id", "run-1")

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, "tool call completed", entry.Message)
	assert.Equal(t, "add", entry.Data["tool"])
	assert.Equal(t, "run-1", entry.Data["run_id"])
}

func TestNoOpLoggerDiscards(t *testing.T) {
	var l Logger = NoOpLogger{}
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}
