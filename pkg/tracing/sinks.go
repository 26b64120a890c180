package tracing

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// fileSeparator puts every element of an entry on its own indented line.
const fileSeparator = "\n    "

// newStdoutCore writes compact single-line entries without colors. Writes go
// straight to w; the handle's own write atomicity governs interleaving.
// Stack traces stay in the file and profiler sinks.
func newStdoutCore(w io.Writer) zapcore.Core {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = encodeLevel
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.StacktraceKey = zapcore.OmitKey

	return zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), TraceLevel)
}

// newFileCore writes decorated multi-line entries without colors through the
// shared file writer.
func newFileCore(w *lockedFile) zapcore.Core {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = encodeLevel
	encoderCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encoderCfg.EncodeCaller = zapcore.FullCallerEncoder
	encoderCfg.FunctionKey = "F"
	encoderCfg.ConsoleSeparator = fileSeparator

	return zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), w, TraceLevel)
}

// newCore layers the enabled sinks, bottom to top: stdout, profiler, file,
// then the level filter. Each sink is written independently; an error in
// one does not keep the entry from the others.
func newCore(stdout, profiler, file zapcore.Core, min zapcore.Level) zapcore.Core {
	cores := make([]zapcore.Core, 0, 3)
	for _, c := range []zapcore.Core{stdout, profiler, file} {
		if c != nil {
			cores = append(cores, c)
		}
	}

	return &levelFilterCore{
		Core: zapcore.NewTee(cores...),
		min:  min,
	}
}
