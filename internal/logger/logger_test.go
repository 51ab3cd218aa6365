package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture points the package logger at a buffer for the rest of the test.
func capture(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	prev := log
	t.Cleanup(func() { log = prev })

	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, &slog.HandlerOptions{Level: level}))
	return &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestInit(t *testing.T) {
	prev := log
	t.Cleanup(func() { log = prev })

	t.Setenv("LOG_LEVEL", "warn")
	Init()
	assert.Same(t, log, L())
	assert.False(t, L().Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, L().Enabled(context.Background(), slog.LevelWarn))
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name  string
		write func()
		level string
		msg   string
	}{
		{"info", func() { Info("sweep finished") }, "INFO", "sweep finished"},
		{"infof", func() { Infof("promoted %d bookings", 3) }, "INFO", "promoted 3 bookings"},
		{"warn", func() { Warn("dispatch buffer full") }, "WARN", "dispatch buffer full"},
		{"warnf", func() { Warnf("queue %s slow", "notifications") }, "WARN", "queue notifications slow"},
		{"error", func() { Error("sweep failed") }, "ERROR", "sweep failed"},
		{"errorf", func() { Errorf("advance %d failed", 7) }, "ERROR", "advance 7 failed"},
		{"debug", func() { Debug("job started") }, "DEBUG", "job started"},
		{"debugf", func() { Debugf("job %s started", "reports") }, "DEBUG", "job reports started"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, slog.LevelDebug)
			tt.write()

			entry := decode(t, buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.msg, entry["msg"])
		})
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	buf := capture(t, slog.LevelInfo)
	Debug("token lookup")
	assert.Empty(t, buf.String())
}

func TestAttributes(t *testing.T) {
	buf := capture(t, slog.LevelInfo)
	Info("report schedule advanced", "schedule_id", 7, "cadence", "monthly")

	entry := decode(t, buf)
	assert.Equal(t, float64(7), entry["schedule_id"])
	assert.Equal(t, "monthly", entry["cadence"])
}

func TestWithError(t *testing.T) {
	buf := capture(t, slog.LevelInfo)
	WithError(assert.AnError).Warn("grace notice not claimed")

	entry := decode(t, buf)
	assert.Equal(t, assert.AnError.Error(), entry["error"])
}

func TestWithFields(t *testing.T) {
	buf := capture(t, slog.LevelInfo)
	WithFields(map[string]interface{}{
		"subscription_id": 12,
		"state":           "past_due",
	}).Info("transition applied")

	entry := decode(t, buf)
	assert.Equal(t, float64(12), entry["subscription_id"])
	assert.Equal(t, "past_due", entry["state"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" warn "))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
