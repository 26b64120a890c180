package tracing

import (
	"context"
	"sync"
	"time"
)

// DefaultSettle is how long the profiler connection is given to settle
// after Init and before the process exits.
const DefaultSettle = time.Second

// shutdownTimeout bounds flushing the profiler providers on Close.
const shutdownTimeout = 5 * time.Second

// sleep is replaced in tests.
var sleep = time.Sleep

// Defer is the shutdown guard returned by Init. Keep it for the life of the
// program and Close it on the way out:
//
//	guard, err := tracing.Profiler().Init()
//	...
//	defer guard.Close()
//
// With the profiler enabled, creating and closing the guard each block for
// the settle duration so the profiler daemon can finish its handshake and
// drain the last spans. Without the profiler the guard does nothing.
type Defer struct {
	prof   *profiler
	settle time.Duration

	once sync.Once
	err  error

	// restore puts back the globals Init replaced.
	restore func()
}

func newDefer(prof *profiler, settle time.Duration) *Defer {
	d := &Defer{prof: prof, settle: settle}
	if d.Active() {
		sleep(settle)
	}
	return d
}

// Active reports whether the guard delays shutdown for a profiler.
func (d *Defer) Active() bool {
	return d != nil && d.prof != nil
}

// Flush exports all spans and events buffered for the profiler.
func (d *Defer) Flush(ctx context.Context) error {
	if !d.Active() {
		return nil
	}
	return d.prof.flush(ctx)
}

// Close waits for the settle duration and shuts the profiler providers
// down. Only the first call does any work.
func (d *Defer) Close() error {
	if !d.Active() {
		return nil
	}

	d.once.Do(func() {
		sleep(d.settle)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		d.err = d.prof.shutdown(ctx)
	})
	return d.err
}
