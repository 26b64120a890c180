package tracing

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// initTracing runs Init and undoes it at the end of the test.
func initTracing(t *testing.T, b Tracing) (*Defer, error) {
	t.Helper()
	d, err := b.Init()
	if err == nil {
		t.Cleanup(d.restore)
	}
	return d, err
}

// sleepRecorder replaces sleep and records requested durations.
type sleepRecorder struct {
	mu    sync.Mutex
	calls []time.Duration
}

func stubSleep(t *testing.T) *sleepRecorder {
	t.Helper()
	rec := &sleepRecorder{}
	orig := sleep
	sleep = func(d time.Duration) {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.calls = append(rec.calls, d)
	}
	t.Cleanup(func() { sleep = orig })
	return rec
}

func (r *sleepRecorder) Calls() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.calls...)
}

func logPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}
