package tracing

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceLevel is a custom level below Debug for ultra-verbose logging.
// Value: -2 (Debug is -1, Info is 0)
const TraceLevel = zapcore.Level(-2)

// ParseLevel parses one of trace, debug, info, warn or error (any case).
func ParseLevel(level string) (zapcore.Level, error) {
	if strings.EqualFold(level, "trace") {
		return TraceLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	if l > zapcore.ErrorLevel {
		return zapcore.InfoLevel, fmt.Errorf("unsupported level: %q", level)
	}
	return l, nil
}

// Trace logs msg at TraceLevel.
func Trace(logger *zap.Logger, msg string, fields ...zap.Field) {
	if ce := logger.Check(TraceLevel, msg); ce != nil {
		ce.Write(fields...)
	}
}

// encodeLevel is zapcore.CapitalLevelEncoder that also knows TRACE.
func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString("TRACE")
		return
	}
	zapcore.CapitalLevelEncoder(l, enc)
}
