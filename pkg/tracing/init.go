package tracing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync/atomic"

	"github.com/tebeka/atexit"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const instrumentationName = "github.com/fyrsmithlabs/utility/pkg/tracing"

var (
	// ErrAlreadyInitialized is returned by every Init after the first successful one.
	ErrAlreadyInitialized = errors.New("tracing: global subscriber already installed")

	// ErrProfilerUnavailable is returned when the profiler is requested in a
	// build without profiler support.
	ErrProfilerUnavailable = errors.New("tracing: profiler support not compiled in")
)

var installed atomic.Bool

// Init builds the configured sinks and installs them as the process-wide
// subscriber, reachable through zap.L and zap.S. The standard library log
// package is redirected into it at Info.
//
// When the file sink is enabled, the file is created here and the panic hook
// is extended to write panics with their stack to it. When the profiler is
// enabled, the OpenTelemetry tracer and logger providers are installed too
// and Init blocks for the settle duration.
//
// Init only succeeds once per process. Later calls return
// ErrAlreadyInitialized without touching the file or the profiler.
func (t Tracing) Init() (*Defer, error) {
	if !installed.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInitialized
	}

	ctx := context.Background()

	var stdoutCore, profilerCore, fileCore zapcore.Core

	if t.stdout {
		stdoutCore = newStdoutCore(t.stdoutSink())
	}

	var prof *profiler
	if t.profiler {
		p, err := newProfiler(ctx, t)
		if err != nil {
			installed.Store(false)
			return nil, err
		}
		prof = p
		profilerCore = p.core
	}

	var file *lockedFile
	if t.filePath != "" {
		f, err := createLockedFile(t.filePath)
		if err != nil {
			if prof != nil {
				_ = prof.shutdown(ctx)
			}
			installed.Store(false)
			return nil, err
		}
		file = f
		fileCore = newFileCore(f)
	}

	logger := zap.New(
		newCore(stdoutCore, profilerCore, fileCore, t.level),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)

	restoreGlobals := zap.ReplaceGlobals(logger)
	restoreStdLog := zap.RedirectStdLog(logger)

	if prof != nil {
		otel.SetTracerProvider(prof.tracerProvider)
		otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
			logger.Warn("opentelemetry error", zap.Error(err))
		}))
		prof.install()
	}

	var prevHook PanicHook
	if file != nil {
		prevHook = CurrentPanicHook()
		SetPanicHook(fileHook(file, prevHook))
	}

	d := newDefer(prof, t.settle)
	d.restore = func() {
		if file != nil {
			SetPanicHook(prevHook)
			_ = file.Close()
		}
		restoreStdLog()
		restoreGlobals()
		installed.Store(false)
	}
	return d, nil
}

// MustInit is Init for program start-up: on failure it prints the error and
// terminates the process through atexit.
func (t Tracing) MustInit() *Defer {
	d, err := t.Init()
	if err != nil {
		atexit.Fatalf("failed to initialize tracing: %v", err)
	}
	return d
}

func (t Tracing) stdoutSink() io.Writer {
	if t.stdoutWriter != nil {
		return t.stdoutWriter
	}
	return os.Stdout
}
