// Package tracing sets up process-wide structured logging and tracing.
//
// # Overview
//
// A Tracing value selects sinks; Init composes them into one zap core and
// installs it as the global logger:
//   - stdout: compact single-line entries, no colors
//   - file: decorated multi-line entries, no colors, flushed per entry
//   - profiler: spans, events and metrics exported to an OTLP daemon
//
// A level filter sits on top of all sinks (Info by default, TRACE is -2).
//
// # Usage
//
//	func main() {
//	    guard := tracing.Stdout().WithFile("app.log").MustInit()
//	    defer guard.Close()
//	    defer tracing.Recover()
//
//	    zap.L().Info("started", zap.Int("pid", os.Getpid()))
//	}
//
// # Panics
//
// Go has no process-wide panic hook, so this package keeps one: see
// SetPanicHook, Recover and Go. With the file sink enabled, Init chains a
// hook that writes the panic value and its stack to the log file before the
// previously installed hook runs.
//
// # Profiler
//
// The profiler sink is compiled out by the noprofiler build tag. With it
// enabled, Init installs OpenTelemetry tracer, logger and meter providers
// exporting over OTLP (gRPC by default, or HTTP with WithProfilerProtocol).
// Spans come from Start, events from the global logger and metrics from
// otel.Meter. Init and Defer.Close each wait for the settle duration so the
// daemon can connect and drain.
package tracing
