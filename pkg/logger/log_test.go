package logger

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{logger: zap.New(core)}, logs
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want Level
	}{
		{in: "debug", want: DebugLevel},
		{in: " WARN ", want: WarnLevel},
		{in: "error", want: ErrorLevel},
		{in: "info", want: InfoLevel},
		{in: "verbose", want: InfoLevel},
	}

	for _, testCase := range testCases {
		t.Run(testCase.in, func(t *testing.T) {
			assert.Equal(t, testCase.want, ParseLevel(testCase.in))
		})
	}
}

func TestLogger_InfoContext(t *testing.T) {
	log, logs := newObserved()

	ctx := util.WithMarket(util.WithRequestID(context.Background(), "corr-1"), "SOL_USDC")
	log.InfoContext(ctx, "order placed", NewField("orderId", "o1"))

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "o1", fields["orderId"])
	assert.Equal(t, "corr-1", fields["request_id"])
	assert.Equal(t, "SOL_USDC", fields["market"])
	assert.NotContains(t, fields, "user_id")
}

func TestLogger_Error(t *testing.T) {
	log, logs := newObserved()

	err := errors.NewTracer("publish_reply").Wrap(
		errors.NewErrorDetails("no route", string(errors.TransportError), "publish"),
	)
	log.ErrorContext(context.Background(), err)

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, string(errors.TransportError), entries[0].ContextMap()["error_code"])
	assert.NotEmpty(t, entries[0].Stack)

	log.Error(stderrors.New("plain"))
	assert.Len(t, logs.All(), 2)
}

func TestLogger_WithFields(t *testing.T) {
	log, logs := newObserved()

	log.WithFields(NewField("component", "router")).Warn("mailbox full")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "router", entries[0].ContextMap()["component"])
}

func TestNewNop(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop().Info("dropped")
	})
}

func TestNewLogger_OutputPathsAndTimeKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")

	log, err := NewLogger(
		WithLoggingLevel(WarnLevel),
		WithOutputPaths([]string{path}),
		WithTimeKey("timestamp"),
	)
	require.NoError(t, err)

	log.Info("filtered out")
	log.Warn("mailbox full", NewField("market", "SOL_USDC"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "mailbox full", entry["message"])
	assert.Equal(t, "SOL_USDC", entry["market"])
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "ts")
}
