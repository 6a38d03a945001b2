package view

import (
	"io"
	"sync"
	"time"
)

// MeasuringWriter counts the bytes and writes that reach out, so callers can
// tell when a renderer has actually flushed a frame.
type MeasuringWriter struct {
	out io.Writer

	mu         sync.Mutex
	totalBytes int64
	writeCount int64
}

func NewMeasuringWriter(out io.Writer) *MeasuringWriter {
	if out == nil {
		out = io.Discard
	}
	return &MeasuringWriter{out: out}
}

func (w *MeasuringWriter) Write(p []byte) (int, error) {
	n, err := w.out.Write(p)
	w.mu.Lock()
	if n > 0 {
		w.totalBytes += int64(n)
		w.writeCount++
	}
	w.mu.Unlock()
	return n, err
}

// Snapshot returns the bytes written and the number of writes so far.
func (w *MeasuringWriter) Snapshot() (int64, int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalBytes, w.writeCount
}

// WaitWriteAfter polls until more than baseWriteCount writes happened or
// timeout elapses. It reports whether a write was observed.
func (w *MeasuringWriter) WaitWriteAfter(baseWriteCount int64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		_, writes := w.Snapshot()
		if writes > baseWriteCount {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(200 * time.Microsecond)
	}
}
