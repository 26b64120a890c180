//go:build noprofiler

package tracing

import (
	"context"
)

// profilerExporters is empty without profiler support.
type profilerExporters struct{}

func newProfiler(context.Context, Tracing) (*profiler, error) {
	return nil, ErrProfilerUnavailable
}
