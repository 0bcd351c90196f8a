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

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestInfo_WritesServiceAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := globalLogger
	globalLogger = New(&buf, Config{Level: "info", Format: "json", Service: "orders"})
	t.Cleanup(func() { globalLogger = prev })

	ctx := ContextWithRequestID(context.Background(), "req-42")
	Info(ctx, "order created", "order_id", 7)
	Debug(ctx, "suppressed")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "order created", entry["msg"])
	assert.Equal(t, "orders", entry["service"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.EqualValues(t, 7, entry["order_id"])
}

func TestRequestID_Missing(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
}
