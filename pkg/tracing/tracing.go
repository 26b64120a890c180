package tracing

import (
	"io"
	"time"

	"go.uber.org/zap/zapcore"
)

// DefaultProfilerEndpoint is the OTLP/gRPC address of a local collector.
const DefaultProfilerEndpoint = "localhost:4317"

// OTLP transports understood by WithProfilerProtocol.
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http/protobuf"
)

// Tracing configures which sinks Init installs. It is a value: every With
// method returns a modified copy, so builders can be shared and composed in
// any order.
//
//	tracing.Stdout().WithFile("app.log").WithLevel(zapcore.DebugLevel).MustInit()
type Tracing struct {
	stdout   bool
	filePath string
	profiler bool
	level    zapcore.Level

	endpoint string
	protocol string
	insecure bool
	settle   time.Duration

	// test seams
	stdoutWriter io.Writer
	exporters    profilerExporters
}

// Empty returns a builder with every sink disabled.
func Empty() Tracing {
	return Tracing{
		level:    zapcore.InfoLevel,
		endpoint: DefaultProfilerEndpoint,
		protocol: ProtocolGRPC,
		insecure: true,
		settle:   DefaultSettle,
	}
}

// Default is the same as Stdout.
func Default() Tracing {
	return Stdout()
}

// Stdout is short for Empty().WithStdout().
func Stdout() Tracing {
	return Empty().WithStdout()
}

// File is short for Empty().WithFile(path).
func File(path string) Tracing {
	return Empty().WithFile(path)
}

// Profiler is short for Empty().WithProfiler().
func Profiler() Tracing {
	return Empty().WithProfiler()
}

// WithStdout enables single-line output to standard output.
func (t Tracing) WithStdout() Tracing {
	t.stdout = true
	return t
}

// WithFile enables multi-line output to path. The file is truncated by Init.
func (t Tracing) WithFile(path string) Tracing {
	t.filePath = path
	return t
}

// WithProfiler enables forwarding spans and events to an OTLP profiler
// daemon. Init fails with ErrProfilerUnavailable in builds tagged noprofiler.
func (t Tracing) WithProfiler() Tracing {
	t.profiler = true
	return t
}

// WithLevel drops events below level. The default is Info.
func (t Tracing) WithLevel(level zapcore.Level) Tracing {
	t.level = level
	return t
}

// WithProfilerEndpoint sets the OTLP/gRPC address of the profiler daemon.
// insecure disables TLS.
func (t Tracing) WithProfilerEndpoint(endpoint string, insecure bool) Tracing {
	t.endpoint = endpoint
	t.insecure = insecure
	return t
}

// WithProfilerProtocol selects ProtocolGRPC (the default) or ProtocolHTTP.
// Pair ProtocolHTTP with an endpoint such as localhost:4318.
func (t Tracing) WithProfilerProtocol(protocol string) Tracing {
	t.protocol = protocol
	return t
}

// WithProfilerSettle sets how long Init and Defer.Close wait for the
// profiler connection. The default is DefaultSettle.
func (t Tracing) WithProfilerSettle(d time.Duration) Tracing {
	t.settle = d
	return t
}
