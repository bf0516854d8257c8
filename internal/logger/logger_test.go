package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextLogger verifies loggers survive a context round trip and fall back to the global one.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := NewWithSink(zapcore.DebugLevel, zapcore.AddSync(&buf))
	ctx := WithName(ToContext(context.Background(), l), "session")
	ctx = WithKV(ctx, "vehicle", "auv-1")

	InfoKV(ctx, "Incident opened", "x", 10.0)

	out := buf.String()
	require.Contains(t, out, "session")
	require.Contains(t, out, "Incident opened")
	require.Contains(t, out, "auv-1")

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestWithLevelOverride checks the override can both lower and raise the level.
func TestWithLevelOverride(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewWithSink(zapcore.InfoLevel, zapcore.AddSync(&buf)))

	DebugKV(ctx, "hidden at info")
	DebugKV(WithLevelOverride(ctx, zapcore.DebugLevel), "shown at debug")
	InfoKV(WithLevelOverride(ctx, zapcore.ErrorLevel), "hidden at error")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown at debug")
}
