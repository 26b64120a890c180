package tracing

import (
	"context"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zapcore"
)

// profiler is the sink forwarding spans and events to a profiler daemon.
type profiler struct {
	core           zapcore.Core
	tracerProvider oteltrace.TracerProvider
	install        func()
	flush          func(context.Context) error
	shutdown       func(context.Context) error
}
