package tracing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{"trace", TraceLevel, false},
		{"TRACE", TraceLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"fatal", zapcore.InfoLevel, true},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrace(t *testing.T) {
	core, logs := observer.New(TraceLevel)
	logger := zap.New(core)

	Trace(logger, "very verbose", zap.Int("n", 1))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, TraceLevel, entry.Level)
	assert.Equal(t, "very verbose", entry.Message)
	assert.Equal(t, int64(1), entry.ContextMap()["n"])
}

func TestTrace_DisabledAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	Trace(zap.New(core), "dropped")

	assert.Equal(t, 0, logs.Len())
}

type levelRecorder struct {
	zapcore.PrimitiveArrayEncoder
	got string
}

func (r *levelRecorder) AppendString(s string) { r.got = s }

func TestEncodeLevel(t *testing.T) {
	tests := []struct {
		level zapcore.Level
		want  string
	}{
		{TraceLevel, "TRACE"},
		{zapcore.DebugLevel, "DEBUG"},
		{zapcore.InfoLevel, "INFO"},
		{zapcore.WarnLevel, "WARN"},
		{zapcore.ErrorLevel, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			rec := &levelRecorder{}
			encodeLevel(tt.level, rec)
			assert.Equal(t, tt.want, rec.got)
		})
	}
}
