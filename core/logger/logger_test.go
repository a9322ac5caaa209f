package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"DEBUG":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"WARNING": zapcore.WarnLevel,
		"warn":    zapcore.WarnLevel,
		"ERROR":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("TRACE")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Run("ConsoleWithoutFile", func(t *testing.T) {
		l, err := New(&Config{Level: "INFO", Format: "console"})
		require.NoError(t, err)
		assert.NotNil(t, l)
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("WarningLevel", func(t *testing.T) {
		l, err := New(&Config{Level: "WARNING", Format: "json"})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("WritesRunFile", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "logs")
		l, err := New(&Config{Level: "debug", Format: "json", Directory: dir})
		require.NoError(t, err)
		l.Info("hello")
		_ = l.Sync()

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Regexp(t, `^ingestor_\d{8}_\d{6}\.log$`, entries[0].Name())
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		l, err := New(&Config{Level: "loud"})
		assert.Error(t, err)
		assert.Nil(t, l)
	})
}

func TestFilePath(t *testing.T) {
	ts := time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)
	assert.Equal(t, filepath.Join("logs", "ingestor_20240501_130405.log"), FilePath("logs", ts))
}

func TestWithRunID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := WithRunID(zap.New(core), "abc-123")
	l.Info("started")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "abc-123", logs.All()[0].ContextMap()["run_id"])

	base := zap.New(core)
	assert.Same(t, base, WithRunID(base, ""))
}
