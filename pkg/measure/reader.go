package measure

import (
	"io"
	"math"
	"time"
)

const (
	// Alpha is the smoothing factor applied to the newest sample.
	Alpha = 0.5

	// UpdateInterval is the minimum window length before the average is updated.
	UpdateInterval = 10 * time.Millisecond
)

// window is the current measurement interval.
type window struct {
	start time.Time
	bytes int64
}

// Reader forwards reads to an underlying reader and keeps throughput statistics.
type Reader struct {
	inner    io.Reader
	sizeHint int64
	hasHint  bool

	total int64
	avg   float64
	win   window

	now func() time.Time
}

// New wraps r without a size hint.
func New(r io.Reader) *Reader {
	return newReader(r, 0, false, time.Now)
}

// WithSizeHint wraps r and records the number of bytes it is expected to yield.
func WithSizeHint(r io.Reader, sizeHint int64) *Reader {
	return newReader(r, sizeHint, true, time.Now)
}

func newReader(r io.Reader, sizeHint int64, hasHint bool, now func() time.Time) *Reader {
	return &Reader{
		inner:    r,
		sizeHint: sizeHint,
		hasHint:  hasHint,
		win:      window{start: now()},
		now:      now,
	}
}

// Read implements io.Reader.
//
// Errors from the wrapped reader are returned unchanged. Bytes returned
// together with an error still count, as io.Reader allows n > 0 alongside
// io.EOF.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n == 0 && err != nil {
		return n, err
	}
	r.record(int64(n))
	return n, err
}

func (r *Reader) record(n int64) {
	elapsed := r.now().Sub(r.win.start)
	r.win.bytes += n

	if elapsed >= UpdateInterval {
		speed := float64(r.win.bytes) / elapsed.Seconds()
		r.avg = Alpha*speed + (1-Alpha)*r.avg
		r.win = window{start: r.now()}
	}

	r.total += n
}

// Total returns the number of bytes read so far.
func (r *Reader) Total() int64 {
	return r.total
}

// Avg returns the smoothed throughput.
func (r *Reader) Avg() Average {
	return Average(r.avg)
}

// SizeHint returns the expected total size, if one was given.
func (r *Reader) SizeHint() (int64, bool) {
	return r.sizeHint, r.hasHint
}

// TimeRemaining estimates how long reading the rest of the hinted size takes
// at the current average.
//
// The second result is false when no size hint was given, nothing has been
// measured yet, more bytes than hinted were read, or the estimate does not
// fit in a time.Duration.
func (r *Reader) TimeRemaining() (time.Duration, bool) {
	if !r.hasHint || r.avg <= 0 || r.total > r.sizeHint {
		return 0, false
	}

	secs := float64(r.sizeHint-r.total) / r.avg
	if math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return 0, false
	}
	if secs >= float64(math.MaxInt64)/float64(time.Second) {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// Percentage returns total/sizeHint*100. It is not clamped: a reader that
// over-delivers reports more than 100. An empty hint that was met exactly
// reports 100.
func (r *Reader) Percentage() (float64, bool) {
	if !r.hasHint {
		return 0, false
	}
	if r.sizeHint == 0 && r.total == 0 {
		return 100, true
	}
	return float64(r.total) / float64(r.sizeHint) * 100, true
}
