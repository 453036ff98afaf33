package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(t *testing.T) (*ZapLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLogger(zap.New(core)), logs
}

func TestZapLogger_Levels(t *testing.T) {
	log, logs := newObserved(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	entries := logs.All()
	require.Len(t, entries, 4)

	levels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	msgs := []string{"dbg", "inf", "wrn", "err"}
	for i, e := range entries {
		assert.Equal(t, levels[i], e.Level)
		assert.Equal(t, msgs[i], e.Message)
	}
	assert.Equal(t, int64(2), entries[1].ContextMap()["b"])
}

func TestZapLogger_WithAndRequestID(t *testing.T) {
	log, logs := newObserved(t)

	ctx := WithRequestID(context.Background(), "req-123")
	log.With("component", "auth").Info(ctx, "hello", "k", "v")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "auth", fields["component"])
	assert.Equal(t, "v", fields["k"])
	assert.Equal(t, "req-123", fields["request_id"])
}

func TestNew_RejectsBadLevel(t *testing.T) {
	_, err := New("json", "loud")
	assert.Error(t, err)

	l, err := New("console", "debug")
	require.NoError(t, err)
	l.Info(context.Background(), "ok")
}
