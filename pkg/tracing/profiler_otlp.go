//go:build !noprofiler

package tracing

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/multierr"
	"google.golang.org/grpc/credentials"
)

// metricExportInterval is how often metrics are pushed to the profiler.
const metricExportInterval = time.Second

// profilerExporters overrides the OTLP exporters (for testing).
type profilerExporters struct {
	spans   sdktrace.SpanExporter
	logs    sdklog.Exporter
	metrics sdkmetric.Reader
}

// newProfiler creates tracer, logger and meter providers exporting over
// OTLP and the zap core bridging events into the logger provider.
func newProfiler(ctx context.Context, t Tracing) (*profiler, error) {
	spanExp, err := newSpanExporter(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	logExp, err := newLogExporter(ctx, t)
	if err != nil {
		_ = spanExp.Shutdown(ctx)
		return nil, fmt.Errorf("creating log exporter: %w", err)
	}

	reader, err := newMetricReader(ctx, t)
	if err != nil {
		_ = multierr.Combine(spanExp.Shutdown(ctx), logExp.Shutdown(ctx))
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res := newResource()

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExp),
		sdktrace.WithResource(res),
	)
	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)),
		sdklog.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)

	return &profiler{
		core:           otelzap.NewCore(instrumentationName, otelzap.WithLoggerProvider(lp)),
		tracerProvider: tp,
		install: func() {
			otel.SetMeterProvider(mp)
			global.SetLoggerProvider(lp)
		},
		flush: func(ctx context.Context) error {
			return multierr.Combine(tp.ForceFlush(ctx), lp.ForceFlush(ctx), mp.ForceFlush(ctx))
		},
		shutdown: func(ctx context.Context) error {
			return multierr.Combine(tp.Shutdown(ctx), lp.Shutdown(ctx), mp.Shutdown(ctx))
		},
	}, nil
}

func newSpanExporter(ctx context.Context, t Tracing) (sdktrace.SpanExporter, error) {
	if t.exporters.spans != nil {
		return t.exporters.spans, nil
	}

	if t.protocol == ProtocolHTTP {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(stripScheme(t.endpoint))}
		if t.insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		} else {
			opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsConfig()))
		}
		return otlptracehttp.New(ctx, opts...)
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(t.endpoint)}
	if t.insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsConfig())))
	}
	return otlptracegrpc.New(ctx, opts...)
}

func newLogExporter(ctx context.Context, t Tracing) (sdklog.Exporter, error) {
	if t.exporters.logs != nil {
		return t.exporters.logs, nil
	}

	if t.protocol == ProtocolHTTP {
		opts := []otlploghttp.Option{otlploghttp.WithEndpoint(stripScheme(t.endpoint))}
		if t.insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		} else {
			opts = append(opts, otlploghttp.WithTLSClientConfig(tlsConfig()))
		}
		return otlploghttp.New(ctx, opts...)
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(t.endpoint)}
	if t.insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	} else {
		opts = append(opts, otlploggrpc.WithTLSCredentials(credentials.NewTLS(tlsConfig())))
	}
	return otlploggrpc.New(ctx, opts...)
}

// newMetricReader exports cumulative metrics periodically. Cumulative
// temporality overrides OTEL_EXPORTER_OTLP_METRICS_TEMPORALITY_PREFERENCE.
func newMetricReader(ctx context.Context, t Tracing) (sdkmetric.Reader, error) {
	if t.exporters.metrics != nil {
		return t.exporters.metrics, nil
	}

	cumulative := func(sdkmetric.InstrumentKind) metricdata.Temporality {
		return metricdata.CumulativeTemporality
	}

	var (
		exp sdkmetric.Exporter
		err error
	)
	if t.protocol == ProtocolHTTP {
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(stripScheme(t.endpoint)),
			otlpmetrichttp.WithTemporalitySelector(cumulative),
		}
		if t.insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		} else {
			opts = append(opts, otlpmetrichttp.WithTLSClientConfig(tlsConfig()))
		}
		exp, err = otlpmetrichttp.New(ctx, opts...)
	} else {
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(t.endpoint),
			otlpmetricgrpc.WithTemporalitySelector(cumulative),
		}
		if t.insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		} else {
			opts = append(opts, otlpmetricgrpc.WithTLSCredentials(credentials.NewTLS(tlsConfig())))
		}
		exp, err = otlpmetricgrpc.New(ctx, opts...)
	}
	if err != nil {
		return nil, err
	}

	return sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(metricExportInterval)), nil
}

// newResource describes the running executable. Every process gets its own
// instance ID so runs can be told apart in the profiler.
func newResource() *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(filepath.Base(os.Args[0])),
		semconv.ServiceInstanceID(uuid.NewString()),
		semconv.ProcessPID(os.Getpid()),
	)
}

func tlsConfig() *tls.Config {
	return &tls.Config{MinVersion: tls.VersionTLS12}
}
