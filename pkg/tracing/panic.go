package tracing

import (
	"fmt"
	"io"
	"runtime/debug"
	"sync/atomic"
)

// PanicInfo describes a recovered panic.
type PanicInfo struct {
	// Value is the argument passed to panic.
	Value any
	// Stack is the stack of the panicking goroutine, captured unconditionally.
	Stack []byte
}

// String returns "panic: <value>".
func (p *PanicInfo) String() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// PanicHook is called by Recover before the panic continues.
type PanicHook func(*PanicInfo)

var panicHook atomic.Pointer[PanicHook]

// SetPanicHook installs h as the process panic hook and returns the hook it
// replaced, so h can chain to it. A nil h removes the hook.
func SetPanicHook(h PanicHook) PanicHook {
	var prev *PanicHook
	if h == nil {
		prev = panicHook.Swap(nil)
	} else {
		prev = panicHook.Swap(&h)
	}
	if prev == nil {
		return nil
	}
	return *prev
}

// CurrentPanicHook returns the installed hook, or nil.
func CurrentPanicHook() PanicHook {
	if h := panicHook.Load(); h != nil {
		return *h
	}
	return nil
}

// Recover runs the panic hook for a panic in the calling goroutine and then
// panics again with the same value, so the runtime still reports the crash.
// It must be deferred directly:
//
//	func main() {
//	    defer tracing.Recover()
//	    ...
//	}
func Recover() {
	r := recover()
	if r == nil {
		return
	}

	info := &PanicInfo{Value: r, Stack: debug.Stack()}
	if h := CurrentPanicHook(); h != nil {
		h(info)
	}
	panic(r)
}

// Go runs fn in a new goroutine guarded by Recover.
func Go(fn func()) {
	go func() {
		defer Recover()
		fn()
	}()
}

// fileHook writes the panic and its stack to w, then calls prev. The lock is
// only tried, never waited on: the panicking goroutine may be the one holding
// it in the middle of logging, and waiting would deadlock.
func fileHook(w *lockedFile, prev PanicHook) PanicHook {
	return func(p *PanicInfo) {
		w.tryWrite(func(out io.Writer) {
			fmt.Fprintf(out, "%s\n\nStack backtrace:\n%s", p, p.Stack)
		})
		if prev != nil {
			prev(p)
		}
	}
}
