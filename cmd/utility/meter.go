package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/utility/pkg/measure"
	"github.com/fyrsmithlabs/utility/pkg/tracing"
)

const meterBufferSize = 32 * 1024

// meterInstruments are the metrics recorded while metering. They reach the
// profiler when it is enabled and are no-ops otherwise.
type meterInstruments struct {
	bytesRead  metric.Int64Counter
	throughput metric.Float64Gauge
}

func newMeterInstruments() (meterInstruments, error) {
	m := otel.Meter("github.com/fyrsmithlabs/utility/cmd/utility")

	bytesRead, err := m.Int64Counter("meter.bytes_read",
		metric.WithUnit("By"),
		metric.WithDescription("Bytes read by the meter command"))
	if err != nil {
		return meterInstruments{}, fmt.Errorf("failed to create bytes counter: %w", err)
	}

	throughput, err := m.Float64Gauge("meter.throughput",
		metric.WithUnit("By/s"),
		metric.WithDescription("Smoothed read throughput"))
	if err != nil {
		return meterInstruments{}, fmt.Errorf("failed to create throughput gauge: %w", err)
	}

	return meterInstruments{bytesRead: bytesRead, throughput: throughput}, nil
}

// meterResult summarizes one metered copy.
type meterResult struct {
	Bytes   int64
	Elapsed time.Duration
	Avg     measure.Average
}

// newMeterCmd builds the meter command.
func newMeterCmd() *cobra.Command {
	var (
		output   string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "meter [file]",
		Short: "Measure read throughput of a file or stdin",
		Long: `Read a file (or stdin when no file or "-" is given) to the end and report
the read throughput. Progress is logged at info level every interval; for
regular files it includes the percentage done and the time remaining.

Examples:
  utility meter big.iso
  curl -s https://example.com/big.iso | utility meter --interval 500ms
  utility meter --output copy.iso big.iso`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, hint, hasHint, closeSrc, err := openSource(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeSrc()

			dst := io.Discard
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				dst = f
			}

			res, err := meter(cmdContext(cmd), src, hint, hasHint, dst, interval)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d bytes in %s (%.2f MB/s)\n",
				res.Bytes, res.Elapsed.Round(time.Millisecond), res.Avg.MegabytesPerSecond())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "copy the data to this file instead of discarding it")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "how often to log progress")
	return cmd
}

// openSource opens the named file, or returns stdin. The size hint is set
// for regular files only.
func openSource(args []string, stdin io.Reader) (io.Reader, int64, bool, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return stdin, 0, false, func() {}, nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, 0, false, nil, fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	closeFn := func() { _ = f.Close() }

	info, err := f.Stat()
	if err != nil {
		closeFn()
		return nil, 0, false, nil, fmt.Errorf("failed to stat %s: %w", args[0], err)
	}
	if !info.Mode().IsRegular() {
		return f, 0, false, closeFn, nil
	}
	return f, info.Size(), true, closeFn, nil
}

// meter copies src to dst through a measuring reader, logging progress
// every interval. A zero interval logs after every read.
func meter(ctx context.Context, src io.Reader, hint int64, hasHint bool, dst io.Writer, interval time.Duration) (meterResult, error) {
	ctx, span := tracing.Start(ctx, "meter")
	defer span.End()

	logger := zap.L().Named("meter")

	inst, err := newMeterInstruments()
	if err != nil {
		return meterResult{}, err
	}

	var r *measure.Reader
	if hasHint {
		r = measure.WithSizeHint(src, hint)
	} else {
		r = measure.New(src)
	}

	start := time.Now()
	lastReport := start
	buf := make([]byte, meterBufferSize)

	for {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "canceled")
			return meterResult{}, err
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			inst.bytesRead.Add(ctx, int64(n))
			if _, err := dst.Write(buf[:n]); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "write failed")
				return meterResult{}, fmt.Errorf("failed to write output: %w", err)
			}
		}

		if now := time.Now(); now.Sub(lastReport) >= interval {
			lastReport = now
			inst.throughput.Record(ctx, r.Avg().BytesPerSecond())
			logger.Info("meter progress", append(tracing.ContextFields(ctx), progressFields(r)...)...)
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			span.RecordError(readErr)
			span.SetStatus(codes.Error, "read failed")
			logger.Error("meter read failed", append(tracing.ContextFields(ctx), zap.Error(readErr))...)
			return meterResult{}, fmt.Errorf("failed to read input: %w", readErr)
		}
	}

	res := meterResult{
		Bytes:   r.Total(),
		Elapsed: time.Since(start),
		Avg:     r.Avg(),
	}
	span.SetAttributes(
		attribute.Int64("meter.bytes", res.Bytes),
		attribute.Float64("meter.bytes_per_second", res.Avg.BytesPerSecond()),
	)
	logger.Info("meter finished", append(tracing.ContextFields(ctx),
		zap.Int64("bytes", res.Bytes),
		zap.Duration("elapsed", res.Elapsed),
		zap.Float64("mb_per_second", res.Avg.MegabytesPerSecond()),
	)...)

	return res, nil
}

// progressFields describes the reader's current state.
func progressFields(r *measure.Reader) []zap.Field {
	fields := []zap.Field{
		zap.Int64("bytes", r.Total()),
		zap.Float64("kb_per_second", r.Avg().KilobytesPerSecond()),
	}
	if pct, ok := r.Percentage(); ok {
		fields = append(fields, zap.Float64("percent", pct))
	}
	if eta, ok := r.TimeRemaining(); ok {
		fields = append(fields, zap.Duration("remaining", eta))
	}
	return fields
}
