package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}

func TestCategoryLoggersAreNamed(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Check("closed scope %s", "func/run")
	ExtractDebug("found %d markers", 3)
	WatchError("watch failed: %v", "boom")

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "check", entries[0].LoggerName)
	assert.Equal(t, "closed scope func/run", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	assert.Equal(t, "extract", entries[1].LoggerName)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)

	assert.Equal(t, "watch", entries[2].LoggerName)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestLevelFiltering(t *testing.T) {
	logs := observe(t, zapcore.WarnLevel)

	Get(CategoryRegistry).Debug("hidden")
	Get(CategoryRegistry).Info("hidden")
	Get(CategoryRegistry).Warn("shown")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	assert.NotPanics(t, func() {
		Boot("nothing to see")
		Get(CategoryLint).Error("still nothing")
		Sync()
	})
}

func TestWithFields(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Get(CategoryHistory).With("run_id", "abc").Info("recorded")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "abc", logs.All()[0].ContextMap()["run_id"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.WarnLevel,
		"chatty":  zapcore.WarnLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestBuild(t *testing.T) {
	l, err := Build(Options{Level: "debug", JSON: true})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = Build(Options{Level: "error"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestTimerThreshold(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	timer := StartTimer(CategoryCheck, "check file")
	time.Sleep(2 * time.Millisecond)
	elapsed := timer.StopWithThreshold(time.Nanosecond)

	assert.GreaterOrEqual(t, elapsed, 2*time.Millisecond)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)

	StartTimer(CategoryCheck, "fast").Stop()
	assert.Equal(t, 2, logs.Len())
}
