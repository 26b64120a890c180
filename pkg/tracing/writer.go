package tracing

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
)

// lockedFile is the log file shared by the file sink and the panic hook.
// Every write holds mu for the whole entry and flushes before unlocking, so
// entries are never interleaved and reach the file as soon as they are logged.
type lockedFile struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
}

// createLockedFile creates path, truncating an existing file.
func createLockedFile(path string) (*lockedFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", path, err)
	}
	return &lockedFile{
		file: f,
		buf:  bufio.NewWriter(f),
	}, nil
}

// Write implements zapcore.WriteSyncer. zap hands over one encoded entry per call.
func (l *lockedFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.buf.Write(p)
	if err != nil {
		return n, err
	}
	return n, l.buf.Flush()
}

// Sync implements zapcore.WriteSyncer.
func (l *lockedFile) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.buf.Flush(); err != nil {
		return err
	}
	return l.file.Sync()
}

// tryWrite runs fn with the buffered writer only if the lock is free right
// now. It reports whether fn ran.
func (l *lockedFile) tryWrite(fn func(w io.Writer)) bool {
	if !l.mu.TryLock() {
		return false
	}
	defer l.mu.Unlock()

	fn(l.buf)
	_ = l.buf.Flush()
	return true
}

// Close flushes and closes the file.
func (l *lockedFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	flushErr := l.buf.Flush()
	if err := l.file.Close(); err != nil {
		return err
	}
	return flushErr
}
