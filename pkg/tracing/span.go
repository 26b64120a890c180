package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Start opens a span on the global tracer. Spans reach the profiler when it
// is enabled and are no-ops otherwise.
//
//	ctx, span := tracing.Start(ctx, "download")
//	defer span.End()
func Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// ContextFields returns fields correlating an event with the span in ctx.
// The context itself rides along as a skipped field: text sinks ignore it,
// the profiler sink uses it to attach the event to the span.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 4)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}

	fields = append(fields, zap.Field{Key: "ctx", Type: zapcore.SkipType, Interface: ctx})
	return fields
}
