// Package measure wraps an io.Reader and reports how fast it is drained.
//
// # Usage
//
//	r := measure.WithSizeHint(resp.Body, resp.ContentLength)
//	_, err := io.Copy(dst, r)
//
//	if pct, ok := r.Percentage(); ok {
//	    fmt.Printf("%.1f%% at %.2f MB/s\n", pct, r.Avg().MegabytesPerSecond())
//	}
//	if eta, ok := r.TimeRemaining(); ok {
//	    fmt.Println("eta", eta)
//	}
//
// # Smoothing
//
// Throughput is an exponential moving average with weight Alpha on the
// newest sample. A sample is only folded in once the current window covers
// at least UpdateInterval, so very short reads do not make the average jump.
//
// # Concurrency
//
// A Reader is not safe for concurrent use. Wrap it externally if it has to
// be shared between goroutines.
package measure
